package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	auth "github.com/brightpath/brightpath-lms/internal/auth/middleware"
	"github.com/brightpath/brightpath-lms/internal/rbac"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := auth.NewAuthService("test-secret")

	tok, err := svc.IssueJWT("alice", "student", "springfield-high", 2)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "alice" || c.Role != "student" || c.Tenant != "springfield-high" || c.Year != 2 {
		t.Fatalf("claims: %+v", c)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewAuthService("secret-a").IssueJWT("alice", "student", "t1", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.NewAuthService("secret-b").Parse(tok); err == nil {
		t.Fatal("token signed with another secret should not parse")
	}
}

func TestJWTMiddlewareAttachesIdentity(t *testing.T) {
	svc := auth.NewAuthService("test-secret")
	tok, err := svc.IssueJWT("alice", "student", "springfield-high", 2)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotID auth.Identity
	var gotRole string
	h := auth.JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = auth.IdentityFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if gotID.Sub != "alice" || gotID.Tenant != "springfield-high" || gotID.Year != 2 {
		t.Fatalf("identity: %+v", gotID)
	}
	if gotRole != "student" {
		t.Fatalf("role in context: %q", gotRole)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	svc := auth.NewAuthService("test-secret")
	h := auth.JWTMiddleware(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-token",
		"basic":   "Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status=%d, want 401", name, rec.Code)
		}
	}
}
