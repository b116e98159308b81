package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrGraderUnavailable covers timeouts, non-2xx responses, and malformed
// payloads from the AI grading service. The pipeline recovers from it with
// the zero-score fallback; it is never surfaced to the learner.
var ErrGraderUnavailable = errors.New("grading: AI grader unavailable")

// ValidateQuestion is one question sent to the grader.
type ValidateQuestion struct {
	Question     string   `json:"question"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options"`
	UserAnswer   string   `json:"user_answer"`
}

// ValidateRequest is the POST /validate-quiz payload.
type ValidateRequest struct {
	ModuleTitle       string             `json:"module_title"`
	ModuleDescription string             `json:"module_description"`
	ModuleContext     string             `json:"module_context"`
	Questions         []ValidateQuestion `json:"questions"`
	MaxResults        int                `json:"max_results"`
}

type QuestionOutcome struct {
	QuestionIndex int    `json:"question_index"` // 1-based
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
	Feedback      string `json:"feedback"`
}

type ValidateResponse struct {
	ScorePercentage  float64           `json:"score_percentage"`
	CorrectAnswers   int               `json:"correct_answers"`
	QuestionsResults []QuestionOutcome `json:"questions_results"`
}

// Grader is the outbound contract to the AI verification service.
type Grader interface {
	Validate(ctx context.Context, req ValidateRequest) (ValidateResponse, error)
}

// AIClient talks to the external grader over HTTP with a bounded timeout.
type AIClient struct {
	rc *resty.Client
}

func NewAIClient(baseURL, apiKey string, timeout time.Duration) *AIClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		rc.SetHeader("X-API-Key", apiKey)
	}
	return &AIClient{rc: rc}
}

func (c *AIClient) Validate(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	var out ValidateResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/validate-quiz")
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("%w: %v", ErrGraderUnavailable, err)
	}
	if resp.StatusCode()/100 != 2 {
		return ValidateResponse{}, fmt.Errorf("%w: %s", ErrGraderUnavailable, resp.Status())
	}
	if len(out.QuestionsResults) == 0 && len(req.Questions) > 0 {
		// A 2xx body without per-question results is not the contract shape.
		return ValidateResponse{}, fmt.Errorf("%w: empty result payload", ErrGraderUnavailable)
	}
	return out, nil
}
