package apperr

import (
	"errors"
	"net/http"
)

// Error is a learner-facing error: a stable machine code plus an HTTP status.
// The localized message is resolved at render time from the code.
type Error struct {
	Code   string
	Status int
	Detail string // optional operator detail, not localized
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

func New(code string, status int, detail string) *Error {
	return &Error{Code: code, Status: status, Detail: detail}
}

func NotFound(code, detail string) *Error  { return New(code, http.StatusNotFound, detail) }
func Forbidden(code, detail string) *Error { return New(code, http.StatusForbidden, detail) }
func Conflict(code, detail string) *Error  { return New(code, http.StatusConflict, detail) }

// Well-known codes. Handlers rely on these staying stable.
const (
	CodeModuleNotFound    = "MODULE_NOT_FOUND"
	CodeChapterNotFound   = "CHAPTER_NOT_FOUND"
	CodeQuizGroupNotFound = "QUIZ_GROUP_NOT_FOUND"
	CodeAttemptNotFound   = "ATTEMPT_NOT_FOUND"
	CodeTenantUnavailable = "TENANT_UNAVAILABLE"
	CodeSequenceLocked    = "SEQUENCE_LOCKED"
	CodeYearLocked        = "YEAR_LOCKED"
	CodeRoleForbidden     = "ROLE_FORBIDDEN"
	CodeNoActiveAttempt   = "NO_ACTIVE_ATTEMPT"
	CodeAttemptCompleted  = "ATTEMPT_ALREADY_COMPLETED"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInternal          = "INTERNAL"
)

// messages maps code -> lang -> message. English is the fallback.
var messages = map[string]map[string]string{
	CodeModuleNotFound: {
		"en": "Module not found.",
		"fr": "Module introuvable.",
	},
	CodeChapterNotFound: {
		"en": "Chapter not found.",
		"fr": "Chapitre introuvable.",
	},
	CodeQuizGroupNotFound: {
		"en": "Quiz not found.",
		"fr": "Quiz introuvable.",
	},
	CodeAttemptNotFound: {
		"en": "Quiz attempt not found.",
		"fr": "Tentative de quiz introuvable.",
	},
	CodeTenantUnavailable: {
		"en": "Your school's database is currently unavailable.",
		"fr": "La base de données de votre école est actuellement indisponible.",
	},
	CodeSequenceLocked: {
		"en": "This content is locked. Complete the previous items first.",
		"fr": "Ce contenu est verrouillé. Terminez d'abord les éléments précédents.",
	},
	CodeYearLocked: {
		"en": "This module belongs to a later academic year.",
		"fr": "Ce module appartient à une année académique ultérieure.",
	},
	CodeRoleForbidden: {
		"en": "You are not allowed to perform this action.",
		"fr": "Vous n'êtes pas autorisé à effectuer cette action.",
	},
	CodeNoActiveAttempt: {
		"en": "There is no quiz attempt in progress to submit.",
		"fr": "Aucune tentative de quiz en cours à soumettre.",
	},
	CodeAttemptCompleted: {
		"en": "This quiz attempt has already been submitted.",
		"fr": "Cette tentative de quiz a déjà été soumise.",
	},
	CodeValidationFailed: {
		"en": "The request payload is invalid.",
		"fr": "Le contenu de la requête est invalide.",
	},
	CodeInternal: {
		"en": "An unexpected error occurred.",
		"fr": "Une erreur inattendue s'est produite.",
	},
}

// Localize resolves the message for a code in the given language,
// falling back to English, then to the code itself.
func Localize(code, lang string) string {
	if m, ok := messages[code]; ok {
		if s, ok := m[lang]; ok {
			return s
		}
		if s, ok := m["en"]; ok {
			return s
		}
	}
	return code
}

// From extracts an *Error; unknown errors map to INTERNAL/500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError}
}
