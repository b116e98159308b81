package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/brightpath/brightpath-lms/internal/apperr"
)

func TestFromUnwrapsThroughWrapping(t *testing.T) {
	base := apperr.Forbidden(apperr.CodeSequenceLocked, "blocked by: m1")
	wrapped := fmt.Errorf("start module: %w", base)

	ae := apperr.From(wrapped)
	if ae.Code != apperr.CodeSequenceLocked || ae.Status != http.StatusForbidden {
		t.Fatalf("got %+v", ae)
	}
}

func TestFromUnknownIsInternal(t *testing.T) {
	ae := apperr.From(errors.New("disk on fire"))
	if ae.Code != apperr.CodeInternal || ae.Status != http.StatusInternalServerError {
		t.Fatalf("got %+v", ae)
	}
}

func TestLocalize(t *testing.T) {
	if got := apperr.Localize(apperr.CodeYearLocked, "fr"); got != "Ce module appartient à une année académique ultérieure." {
		t.Fatalf("fr message: %q", got)
	}
	if got := apperr.Localize(apperr.CodeYearLocked, "de"); got != "This module belongs to a later academic year." {
		t.Fatalf("unknown language should fall back to English, got %q", got)
	}
	if got := apperr.Localize("SOME_NEW_CODE", "en"); got != "SOME_NEW_CODE" {
		t.Fatalf("unknown code should echo, got %q", got)
	}
}
