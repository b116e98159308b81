package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightpath/brightpath-lms/internal/rbac"
)

func TestRequireAllowsAndDenies(t *testing.T) {
	h := rbac.Require("attempt:create")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/quiz-groups/qg1/attempts", nil)
	req = req.WithContext(rbac.WithRole(req.Context(), "student"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("student should pass, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/quiz-groups/qg1/attempts", nil)
	req = req.WithContext(rbac.WithRole(req.Context(), "teacher"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("teacher should be denied, got %d", rec.Code)
	}
	var body map[string]map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"]["code"] != "ROLE_FORBIDDEN" {
		t.Fatalf("error body: %+v", body)
	}
}

func TestRequireDeniesMissingRole(t *testing.T) {
	h := rbac.Require("content:view")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/modules", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d", rec.Code)
	}
}
