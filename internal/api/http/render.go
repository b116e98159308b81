package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	auth "github.com/brightpath/brightpath-lms/internal/auth/middleware"
	"github.com/brightpath/brightpath-lms/internal/learning"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope. message is localized from the
// Accept-Language header; detail stays in English.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= 500 {
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
	}
	respondJSON(w, ae.Status, map[string]errorBody{"error": {
		Code:    ae.Code,
		Message: apperr.Localize(ae.Code, requestLang(r)),
		Detail:  ae.Detail,
	}})
}

func requestLang(r *http.Request) string {
	h := r.Header.Get("Accept-Language")
	if h == "" {
		return "en"
	}
	// first tag only, "fr-CA;q=0.9" -> "fr"
	tag := strings.TrimSpace(strings.SplitN(h, ",", 2)[0])
	tag = strings.SplitN(tag, ";", 2)[0]
	if i := strings.IndexByte(tag, '-'); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

func learnerFromRequest(r *http.Request) (learning.Learner, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.Sub == "" || id.Tenant == "" {
		return learning.Learner{}, false
	}
	return learning.Learner{TenantKey: id.Tenant, StudentID: id.Sub, Year: id.Year}, true
}
