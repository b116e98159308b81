package grading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/brightpath/brightpath-lms/internal/apperr"
)

// SQLStore persists quiz attempts inside one tenant's database.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const attemptCols = `id,student_id,quiz_group_id,attempt_number,status,score_percentage,
	is_passed,passing_threshold,graded_by_ai,answers_json,results_json,tag_performance_json,
	time_spent_sec,started_at,completed_at`

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptCols+` FROM student_quiz_attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, apperr.NotFound(apperr.CodeAttemptNotFound, "attempt "+id)
	}
	return a, err
}

// ActiveAttempt returns the at-most-one in-progress attempt for a
// (student, quiz group).
func (s *SQLStore) ActiveAttempt(ctx context.Context, studentID, groupID string) (Attempt, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attemptCols+` FROM student_quiz_attempts
		 WHERE student_id=$1 AND quiz_group_id=$2 AND status='in_progress'`, studentID, groupID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, false, nil
	}
	if err != nil {
		return Attempt{}, false, err
	}
	return a, true, nil
}

func (s *SQLStore) LastAttemptNumber(ctx context.Context, studentID, groupID string) (int, error) {
	var n sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(attempt_number) FROM student_quiz_attempts
		 WHERE student_id=$1 AND quiz_group_id=$2`, studentID, groupID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

func (s *SQLStore) Insert(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO student_quiz_attempts
		   (id,student_id,quiz_group_id,attempt_number,status,score_percentage,is_passed,
		    passing_threshold,graded_by_ai,answers_json,results_json,tag_performance_json,
		    time_spent_sec,started_at,completed_at)
		 VALUES ($1,$2,$3,$4,$5,0,0,$6,0,$7,'[]','[]',0,$8,NULL)`,
		a.ID, a.StudentID, a.QuizGroupID, a.AttemptNumber, string(a.Status),
		a.PassingThreshold, string(aj), a.StartedAt)
	return err
}

// Finalize writes the graded outcome with an optimistic status guard: if a
// concurrent submit already completed the attempt, zero rows match and the
// caller gets AlreadyCompleted instead of a silent double-write.
func (s *SQLStore) Finalize(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	tj, err := json.Marshal(a.TagPerformance)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE student_quiz_attempts
		 SET status='completed', score_percentage=$1, is_passed=$2, graded_by_ai=$3,
		     answers_json=$4, results_json=$5, tag_performance_json=$6, time_spent_sec=$7,
		     completed_at=$8
		 WHERE id=$9 AND status='in_progress'`,
		a.ScorePercentage, boolInt(a.IsPassed), boolInt(a.GradedByAI),
		string(aj), string(rj), string(tj), a.TimeSpentSec, time.Now().Unix(), a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Conflict(apperr.CodeAttemptCompleted, "attempt "+a.ID)
	}
	return nil
}

// ListAttempts returns a student's attempts, optionally filtered by group,
// newest first.
func (s *SQLStore) ListAttempts(ctx context.Context, studentID, groupID string) ([]Attempt, error) {
	q := `SELECT ` + attemptCols + ` FROM student_quiz_attempts WHERE student_id=$1`
	args := []any{studentID}
	if groupID != "" {
		q += ` AND quiz_group_id=$2`
		args = append(args, groupID)
	}
	q += ` ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAttempts reports total and passed attempts for the dashboard fan-out.
func (s *SQLStore) CountAttempts(ctx context.Context, studentID string) (total, passed int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_passed),0) FROM student_quiz_attempts
		 WHERE student_id=$1 AND status='completed'`, studentID).Scan(&total, &passed)
	return
}

// RecordFeedback stores an AI feedback summary for dashboard enrichment.
func (s *SQLStore) RecordFeedback(ctx context.Context, id, studentID, groupID, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_feedback (id,student_id,quiz_group_id,summary,created_at)
		 VALUES ($1,$2,$3,$4,$5)`, id, studentID, groupID, summary, time.Now().Unix())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var passed, byAI int
	var aj, rj, tj string
	var completed sql.NullInt64
	err := row.Scan(&a.ID, &a.StudentID, &a.QuizGroupID, &a.AttemptNumber, &a.Status,
		&a.ScorePercentage, &passed, &a.PassingThreshold, &byAI, &aj, &rj, &tj,
		&a.TimeSpentSec, &a.StartedAt, &completed)
	if err != nil {
		return Attempt{}, err
	}
	a.IsPassed = passed != 0
	a.GradedByAI = byAI != 0
	if completed.Valid {
		a.CompletedAt = &completed.Int64
	}
	if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(rj), &a.Results); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(tj), &a.TagPerformance); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
