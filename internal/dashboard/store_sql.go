package dashboard

import (
	"context"
	"database/sql"
)

// FeedbackSummary is a recent AI-feedback line shown on the dashboard.
type FeedbackSummary struct {
	ID          string `json:"id"`
	QuizGroupID string `json:"quiz_group_id"`
	Summary     string `json:"summary"`
	CreatedAt   int64  `json:"created_at"`
}

// ProfessorReview is a professor's written review of a student.
type ProfessorReview struct {
	ID        string `json:"id"`
	Reviewer  string `json:"reviewer"`
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"created_at"`
}

// SQLStore reads the dashboard enrichment records of one tenant.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) RecentFeedback(ctx context.Context, studentID string, limit int) ([]FeedbackSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_group_id,summary,created_at FROM ai_feedback
		 WHERE student_id=$1 ORDER BY created_at DESC LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FeedbackSummary
	for rows.Next() {
		var f FeedbackSummary
		if err := rows.Scan(&f.ID, &f.QuizGroupID, &f.Summary, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLStore) RecentReviews(ctx context.Context, studentID string, limit int) ([]ProfessorReview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,reviewer,comment,created_at FROM professor_reviews
		 WHERE student_id=$1 ORDER BY created_at DESC LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProfessorReview
	for rows.Next() {
		var r ProfessorReview
		if err := rows.Scan(&r.ID, &r.Reviewer, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
