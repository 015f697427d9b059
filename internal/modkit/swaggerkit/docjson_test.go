package swaggerkit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	kit "tasksync/internal/platform/testkit"
)

func TestServeDocJSON_Augments(t *testing.T) {
	kit.Swap(t, &docReader, func() string {
		return `{"swagger":"2.0","info":{"title":"tasksync","version":"0.1.0"},
		"paths":{"/runs":{"post":{"responses":{"200":{"description":"ok"}}}}}}`
	})
	kit.Swap(t, &mutators, nil)
	Register(func(spec map[string]any) { spec["x-mutated"] = true })

	rec := httptest.NewRecorder()
	serveDocJSON("/api/v1")(rec, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.3" || spec["swagger"] != nil {
		t.Fatalf("not lifted to oas3: %v", spec["openapi"])
	}
	if spec["x-mutated"] != true {
		t.Fatalf("mutator not applied")
	}
	resps := spec["paths"].(map[string]any)["/runs"].(map[string]any)["post"].(map[string]any)["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing %s response", code)
		}
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatalf("ErrorResponse schema missing")
	}
}

func TestServeDocJSON_BadSpec(t *testing.T) {
	kit.Swap(t, &docReader, func() string { return "{" })
	rec := httptest.NewRecorder()
	serveDocJSON("/api/v1")(rec, httptest.NewRequest("GET", "/swagger/doc.json", nil))
	if rec.Code != 500 {
		t.Fatalf("code = %d", rec.Code)
	}
}
