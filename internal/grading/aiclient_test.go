package grading_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightpath/brightpath-lms/internal/grading"
)

func sampleRequest() grading.ValidateRequest {
	return grading.ValidateRequest{
		ModuleTitle:   "Anatomy",
		ModuleContext: "Chapter 1 Quiz",
		Questions: []grading.ValidateQuestion{
			{Question: "Largest bone?", QuestionType: "single", Options: []string{"femur", "tibia"}, UserAnswer: "femur"},
		},
		MaxResults: 1,
	}
}

func TestAIClientValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/validate-quiz" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "k1" {
			t.Errorf("X-API-Key = %q", got)
		}
		var req grading.ValidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Questions) != 1 || req.Questions[0].UserAnswer != "femur" {
			t.Errorf("unexpected payload: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(grading.ValidateResponse{
			ScorePercentage: 100,
			CorrectAnswers:  1,
			QuestionsResults: []grading.QuestionOutcome{
				{QuestionIndex: 1, IsCorrect: true, Feedback: "correct"},
			},
		})
	}))
	defer srv.Close()

	c := grading.NewAIClient(srv.URL, "k1", 5*time.Second)
	res, err := c.Validate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.ScorePercentage != 100 || len(res.QuestionsResults) != 1 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestAIClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := grading.NewAIClient(srv.URL, "", 5*time.Second)
	_, err := c.Validate(context.Background(), sampleRequest())
	if !errors.Is(err, grading.ErrGraderUnavailable) {
		t.Fatalf("want ErrGraderUnavailable, got %v", err)
	}
}

func TestAIClientEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := grading.NewAIClient(srv.URL, "", 5*time.Second)
	_, err := c.Validate(context.Background(), sampleRequest())
	if !errors.Is(err, grading.ErrGraderUnavailable) {
		t.Fatalf("want ErrGraderUnavailable for empty payload, got %v", err)
	}
}

func TestAIClientTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := grading.NewAIClient(srv.URL, "", 50*time.Millisecond)
	_, err := c.Validate(context.Background(), sampleRequest())
	if !errors.Is(err, grading.ErrGraderUnavailable) {
		t.Fatalf("want ErrGraderUnavailable on timeout, got %v", err)
	}
}
