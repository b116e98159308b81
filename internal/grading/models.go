package grading

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// Answer is one learner response inside an attempt.
type Answer struct {
	QuizID          string   `json:"quiz_id"` // question id within the group
	SelectedOptions []string `json:"selected_options"`
	TimeSpentSec    int      `json:"time_spent_sec,omitempty"`
}

// QuestionResult is the per-question grading outcome. QuestionIndex is
// 1-based, matching the AI service contract.
type QuestionResult struct {
	QuestionIndex int    `json:"question_index"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
	Feedback      string `json:"feedback,omitempty"`
}

// TagPerformance is the per-topic-tag accuracy derived from one attempt,
// so analytics can answer "which topics is this learner weak in" without
// re-scanning raw answers.
type TagPerformance struct {
	Tag        string  `json:"tag"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type Attempt struct {
	ID               string           `json:"id"`
	StudentID        string           `json:"student_id"`
	QuizGroupID      string           `json:"quiz_group_id"`
	AttemptNumber    int              `json:"attempt_number"`
	Status           AttemptStatus    `json:"status"`
	ScorePercentage  float64          `json:"score_percentage"`
	IsPassed         bool             `json:"is_passed"`
	PassingThreshold float64          `json:"passing_threshold"`
	// GradedByAI is false when the grader was unreachable or disabled and
	// the zero-score fallback finalized the attempt. Diagnostic only; the
	// submit operation itself still succeeds.
	GradedByAI       bool             `json:"graded_by_ai"`
	TimeSpentSec     int              `json:"time_spent_sec,omitempty"`
	Answers          []Answer         `json:"answers"`
	Results          []QuestionResult `json:"results,omitempty"`
	TagPerformance   []TagPerformance `json:"tag_performance,omitempty"`
	StartedAt        int64            `json:"started_at"`
	CompletedAt      *int64           `json:"completed_at,omitempty"`
}
