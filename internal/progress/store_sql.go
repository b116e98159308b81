package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore persists progress rows inside one tenant's database. Rows are
// created lazily on first "start" (upsert semantics) and never hard-deleted.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) GetModuleProgress(ctx context.Context, studentID, moduleID string) (ModuleProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT student_id,module_id,status,progress_percentage,chapters_completed,total_chapters,
		        module_quiz_completed,started_at,completed_at,last_accessed_at
		 FROM student_module_progress WHERE student_id=$1 AND module_id=$2`, studentID, moduleID)
	mp, err := scanModuleProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ModuleProgress{}, false, nil
	}
	if err != nil {
		return ModuleProgress{}, false, err
	}
	return mp, true, nil
}

// EnsureModuleStarted upserts the (student, module) row. started_at is set
// only when previously unset; repeat calls just refresh last_accessed_at.
func (s *SQLStore) EnsureModuleStarted(ctx context.Context, studentID, moduleID string, totalChapters int) (ModuleProgress, error) {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_module_progress
		   (student_id,module_id,status,progress_percentage,chapters_completed,total_chapters,
		    module_quiz_completed,started_at,completed_at,last_accessed_at)
		 VALUES ($1,$2,'in_progress',0,0,$3,0,$4,NULL,$4)
		 ON CONFLICT (student_id,module_id) DO UPDATE SET
		   total_chapters=EXCLUDED.total_chapters,
		   last_accessed_at=EXCLUDED.last_accessed_at`,
		studentID, moduleID, totalChapters, now)
	if err != nil {
		return ModuleProgress{}, err
	}
	mp, _, err := s.GetModuleProgress(ctx, studentID, moduleID)
	return mp, err
}

// ListModuleProgress returns every module row for a student.
func (s *SQLStore) ListModuleProgress(ctx context.Context, studentID string) ([]ModuleProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id,module_id,status,progress_percentage,chapters_completed,total_chapters,
		        module_quiz_completed,started_at,completed_at,last_accessed_at
		 FROM student_module_progress WHERE student_id=$1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ModuleProgress
	for rows.Next() {
		mp, err := scanModuleProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mp)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetChapterProgress(ctx context.Context, studentID, chapterID string) (ChapterProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT student_id,chapter_id,module_id,chapter_sequence,status,chapter_quiz_completed,
		        quiz_auto_completed,started_at,completed_at,last_accessed_at
		 FROM student_chapter_progress WHERE student_id=$1 AND chapter_id=$2`, studentID, chapterID)
	cp, err := scanChapterProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ChapterProgress{}, false, nil
	}
	if err != nil {
		return ChapterProgress{}, false, err
	}
	return cp, true, nil
}

func (s *SQLStore) EnsureChapterStarted(ctx context.Context, studentID, chapterID, moduleID string, chapterSeq int) (ChapterProgress, error) {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_chapter_progress
		   (student_id,chapter_id,module_id,chapter_sequence,status,chapter_quiz_completed,
		    quiz_auto_completed,started_at,completed_at,last_accessed_at)
		 VALUES ($1,$2,$3,$4,'in_progress',0,0,$5,NULL,$5)
		 ON CONFLICT (student_id,chapter_id) DO UPDATE SET
		   chapter_sequence=EXCLUDED.chapter_sequence,
		   last_accessed_at=EXCLUDED.last_accessed_at`,
		studentID, chapterID, moduleID, chapterSeq, now)
	if err != nil {
		return ChapterProgress{}, err
	}
	cp, _, err := s.GetChapterProgress(ctx, studentID, chapterID)
	return cp, err
}

// ListChapterProgress returns the chapter rows for one (student, module),
// ordered by the denormalized chapter sequence.
func (s *SQLStore) ListChapterProgress(ctx context.Context, studentID, moduleID string) ([]ChapterProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id,chapter_id,module_id,chapter_sequence,status,chapter_quiz_completed,
		        quiz_auto_completed,started_at,completed_at,last_accessed_at
		 FROM student_chapter_progress WHERE student_id=$1 AND module_id=$2
		 ORDER BY chapter_sequence`, studentID, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChapterProgress
	for rows.Next() {
		cp, err := scanChapterProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// MarkChapterCompleted transitions the chapter row to completed.
// completed_at is set only on the first completion. When autoQuiz is true
// the quiz requirement is satisfied without an assessment and flagged so.
func (s *SQLStore) MarkChapterCompleted(ctx context.Context, studentID, chapterID string, autoQuiz bool) error {
	now := time.Now().Unix()
	if autoQuiz {
		_, err := s.db.ExecContext(ctx,
			`UPDATE student_chapter_progress
			 SET status='completed', chapter_quiz_completed=1, quiz_auto_completed=1,
			     completed_at=COALESCE(completed_at,$1), last_accessed_at=$1
			 WHERE student_id=$2 AND chapter_id=$3`, now, studentID, chapterID)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE student_chapter_progress
		 SET status='completed', completed_at=COALESCE(completed_at,$1), last_accessed_at=$1
		 WHERE student_id=$2 AND chapter_id=$3`, now, studentID, chapterID)
	return err
}

// SetChapterQuizCompleted records a genuine quiz pass for the chapter.
func (s *SQLStore) SetChapterQuizCompleted(ctx context.Context, studentID, chapterID string) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`UPDATE student_chapter_progress
		 SET chapter_quiz_completed=1, quiz_auto_completed=0, last_accessed_at=$1
		 WHERE student_id=$2 AND chapter_id=$3`, now, studentID, chapterID)
	return err
}

func (s *SQLStore) SetModuleQuizCompleted(ctx context.Context, studentID, moduleID string) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`UPDATE student_module_progress
		 SET module_quiz_completed=1, last_accessed_at=$1
		 WHERE student_id=$2 AND module_id=$3`, now, studentID, moduleID)
	return err
}

// CountCompletedChapters counts chapter rows whose quiz requirement is
// satisfied (genuine pass or auto-completion) for one (student, module).
func (s *SQLStore) CountCompletedChapters(ctx context.Context, studentID, moduleID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM student_chapter_progress
		 WHERE student_id=$1 AND module_id=$2 AND chapter_quiz_completed=1`,
		studentID, moduleID).Scan(&n)
	return n, err
}

// ApplyModuleAggregate writes the recomputed aggregate onto the module row.
func (s *SQLStore) ApplyModuleAggregate(ctx context.Context, mp ModuleProgress) error {
	now := time.Now().Unix()
	var completedAt any
	if mp.CompletedAt != nil {
		completedAt = *mp.CompletedAt
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE student_module_progress
		 SET status=$1, progress_percentage=$2, chapters_completed=$3, total_chapters=$4,
		     completed_at=$5, last_accessed_at=$6
		 WHERE student_id=$7 AND module_id=$8`,
		string(mp.Status), mp.ProgressPercentage, mp.ChaptersCompleted, mp.TotalChapters,
		completedAt, now, mp.StudentID, mp.ModuleID)
	return err
}

func scanModuleProgress(row rowScanner) (ModuleProgress, error) {
	var mp ModuleProgress
	var quiz int
	var started, completed sql.NullInt64
	err := row.Scan(&mp.StudentID, &mp.ModuleID, &mp.Status, &mp.ProgressPercentage,
		&mp.ChaptersCompleted, &mp.TotalChapters, &quiz, &started, &completed, &mp.LastAccessedAt)
	if err != nil {
		return ModuleProgress{}, err
	}
	mp.ModuleQuizCompleted = quiz != 0
	if started.Valid {
		mp.StartedAt = &started.Int64
	}
	if completed.Valid {
		mp.CompletedAt = &completed.Int64
	}
	return mp, nil
}

func scanChapterProgress(row rowScanner) (ChapterProgress, error) {
	var cp ChapterProgress
	var quiz, auto int
	var started, completed sql.NullInt64
	err := row.Scan(&cp.StudentID, &cp.ChapterID, &cp.ModuleID, &cp.ChapterSequence, &cp.Status,
		&quiz, &auto, &started, &completed, &cp.LastAccessedAt)
	if err != nil {
		return ChapterProgress{}, err
	}
	cp.ChapterQuizCompleted = quiz != 0
	cp.QuizAutoCompleted = auto != 0
	if started.Valid {
		cp.StartedAt = &started.Int64
	}
	if completed.Valid {
		cp.CompletedAt = &completed.Int64
	}
	return cp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
