package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tasksync/internal/platform/config"
	phttp "tasksync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuild_OptionsApplyInOrder(t *testing.T) {
	b := Build(WithName("runs"), WithPrefix("/runs"), WithName("runs2"), WithPorts(42))
	if b.Name != "runs2" || b.Prefix != "/runs" {
		t.Fatalf("built %+v", b)
	}
	if b.Ports.(int) != 42 {
		t.Fatalf("ports = %v", b.Ports)
	}
	if b.Register == nil {
		t.Fatalf("Register should default to a no-op")
	}
}

func TestBuilt_Mount(t *testing.T) {
	var order []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw")
			next.ServeHTTP(w, r)
		})
	}
	extra := func(r phttp.Router) {
		r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	}
	b := Build(WithPrefix("/tasks"), WithMiddlewares(mw), WithRegister(extra))

	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusOK)
		})
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks/", nil))
	if rec.Code != http.StatusOK || len(order) != 2 || order[0] != "mw" {
		t.Fatalf("code=%d order=%v", rec.Code, order)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks/extra", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("extra route code = %d", rec.Code)
	}
}

func TestFromStore_NilStore(t *testing.T) {
	d := FromStore(Deps{}.Log, config.New(), nil)
	if d.PG != nil || d.CH != nil {
		t.Fatalf("nil store should leave backends nil")
	}
}
