package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/learning"
)

func ListModulesHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mods, err := svc.ListModules(r.Context(), who)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, mods)
	}
}

func ListChaptersHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		chapters, err := svc.ListChapters(r.Context(), who, chi.URLParam(r, "moduleID"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, chapters)
	}
}

// Authoring endpoints. The upsert bodies carry the full entity; IDs come
// from the path so PUT stays idempotent.

func UpsertModuleHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var m content.Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, "bad json"))
			return
		}
		m.ID = chi.URLParam(r, "moduleID")
		if m.Title == "" || m.Sequence < 1 || m.Year < 1 {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest,
				"title, sequence >= 1 and year >= 1 required"))
			return
		}
		if err := svc.UpsertModule(r.Context(), who.TenantKey, m); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"id": m.ID})
	}
}

func UpsertChapterHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var c content.Chapter
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, "bad json"))
			return
		}
		c.ID = chi.URLParam(r, "chapterID")
		if c.ModuleID == "" || c.Title == "" || c.Sequence < 1 {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest,
				"module_id, title and sequence >= 1 required"))
			return
		}
		if err := svc.UpsertChapter(r.Context(), who.TenantKey, c); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"id": c.ID})
	}
}

func UpsertQuizGroupHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var g content.QuizGroup
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, "bad json"))
			return
		}
		g.ID = chi.URLParam(r, "groupID")
		if err := validateGroup(g); err != nil {
			respondError(w, r, err)
			return
		}
		if err := svc.UpsertQuizGroup(r.Context(), who.TenantKey, g); err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"id": g.ID})
	}
}

func validateGroup(g content.QuizGroup) error {
	bad := func(msg string) error {
		return apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, msg)
	}
	switch g.Type {
	case content.GroupTypeChapter:
		if g.ChapterID == "" {
			return bad("chapter_id required for chapter groups")
		}
	case content.GroupTypeModule:
		if g.ModuleID == "" {
			return bad("module_id required for module groups")
		}
	default:
		return bad("type must be chapter or module")
	}
	if g.PassingThreshold < 0 || g.PassingThreshold > 100 {
		return bad("passing_threshold must be within 0..100")
	}
	if len(g.Questions) == 0 {
		return bad("at least one question required")
	}
	return nil
}
