package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	"github.com/brightpath/brightpath-lms/internal/grading"
	"github.com/brightpath/brightpath-lms/internal/learning"
)

func StartAttemptHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		a, err := svc.StartQuizAttempt(r.Context(), who, chi.URLParam(r, "groupID"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

type submitAnswer struct {
	QuizID          string   `json:"quiz_id" validate:"required"`
	SelectedOptions []string `json:"selected_options"`
	TimeSpentSec    int      `json:"time_spent_sec" validate:"min=0"`
}

func SubmitAttemptHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Answers      []submitAnswer `json:"answers" validate:"required,dive"`
			TimeSpentSec int            `json:"time_spent_sec" validate:"min=0"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, "bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, r, apperr.New(apperr.CodeValidationFailed, http.StatusBadRequest, err.Error()))
			return
		}
		answers := make([]grading.Answer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, grading.Answer{
				QuizID:          a.QuizID,
				SelectedOptions: a.SelectedOptions,
				TimeSpentSec:    a.TimeSpentSec,
			})
		}
		a, err := svc.SubmitQuizAnswers(r.Context(), who, chi.URLParam(r, "attemptID"), answers, req.TimeSpentSec)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

func GetAttemptHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		a, err := svc.GetAttempt(r.Context(), who, chi.URLParam(r, "attemptID"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

func ListAttemptsHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := learnerFromRequest(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		as, err := svc.ListAttempts(r.Context(), who, r.URL.Query().Get("group"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		if as == nil {
			as = []grading.Attempt{}
		}
		respondJSON(w, http.StatusOK, as)
	}
}
