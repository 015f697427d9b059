// Package swaggerkit serves the API's OpenAPI document and swagger UI
package swaggerkit

import (
	"net/http"

	phttp "tasksync/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the UI under /swagger/ and the document at /swagger/doc.json
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusPermanentRedirect)
	})
	r.Get("/swagger/doc.json", serveDocJSON("/api/v1"))
	r.Handle("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/swagger/doc.json"),
	))
}
