package progress

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ModuleProgress is the denormalized per-(student, module) aggregate. Its
// percentage is always recomputed from chapter rows and the quiz flag,
// never hand-edited.
type ModuleProgress struct {
	StudentID           string `json:"student_id"`
	ModuleID            string `json:"module_id"`
	Status              Status `json:"status"`
	ProgressPercentage  int    `json:"progress_percentage"`
	ChaptersCompleted   int    `json:"chapters_completed"`
	TotalChapters       int    `json:"total_chapters"`
	ModuleQuizCompleted bool   `json:"module_quiz_completed"`
	StartedAt           *int64 `json:"started_at,omitempty"`
	CompletedAt         *int64 `json:"completed_at,omitempty"`
	LastAccessedAt      int64  `json:"last_accessed_at"`
}

type ChapterProgress struct {
	StudentID string `json:"student_id"`
	ChapterID string `json:"chapter_id"`
	ModuleID  string `json:"module_id"`
	// ChapterSequence is a denormalized copy of the chapter's sequence so
	// listings can sort without joining content.
	ChapterSequence      int    `json:"chapter_sequence"`
	Status               Status `json:"status"`
	ChapterQuizCompleted bool   `json:"chapter_quiz_completed"`
	// QuizAutoCompleted marks a quiz requirement satisfied because the
	// chapter has no quiz attached, distinct from a genuine pass.
	QuizAutoCompleted bool   `json:"quiz_auto_completed"`
	StartedAt         *int64 `json:"started_at,omitempty"`
	CompletedAt       *int64 `json:"completed_at,omitempty"`
	LastAccessedAt    int64  `json:"last_accessed_at"`
}
