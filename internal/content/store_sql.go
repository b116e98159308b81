package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/brightpath/brightpath-lms/internal/apperr"
)

// SQLStore reads (and, for the authoring surface, upserts) content entities
// inside one tenant's database. The progress core only ever reads.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,sequence,year,created_at FROM modules
		 WHERE id=$1 AND deleted_at IS NULL`, id)
	var m Module
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Sequence, &m.Year, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Module{}, apperr.NotFound(apperr.CodeModuleNotFound, "module "+id)
		}
		return Module{}, err
	}
	return m, nil
}

// ListModules returns all non-deleted modules ordered by (year, sequence).
func (s *SQLStore) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,sequence,year,created_at FROM modules
		 WHERE deleted_at IS NULL ORDER BY year, sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Sequence, &m.Year, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListModulesByYear returns the module siblings the sequence gate compares.
func (s *SQLStore) ListModulesByYear(ctx context.Context, year int) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,sequence,year,created_at FROM modules
		 WHERE year=$1 AND deleted_at IS NULL ORDER BY sequence`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Sequence, &m.Year, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetChapter(ctx context.Context, id string) (Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,module_id,title,sequence,created_at FROM chapters
		 WHERE id=$1 AND deleted_at IS NULL`, id)
	var c Chapter
	if err := row.Scan(&c.ID, &c.ModuleID, &c.Title, &c.Sequence, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chapter{}, apperr.NotFound(apperr.CodeChapterNotFound, "chapter "+id)
		}
		return Chapter{}, err
	}
	return c, nil
}

// ListChapters returns the non-deleted chapters of a module ordered by sequence.
func (s *SQLStore) ListChapters(ctx context.Context, moduleID string) ([]Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,module_id,title,sequence,created_at FROM chapters
		 WHERE module_id=$1 AND deleted_at IS NULL ORDER BY sequence`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Chapter
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ID, &c.ModuleID, &c.Title, &c.Sequence, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuizGroup(ctx context.Context, id string) (QuizGroup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,gtype,module_id,chapter_id,title,passing_threshold,questions_json,created_at
		 FROM quiz_groups WHERE id=$1 AND deleted_at IS NULL`, id)
	return scanGroup(row)
}

// GroupsForChapter reports the quiz groups attached to a chapter. An empty
// result means the chapter has no assessment and auto-completes on read.
func (s *SQLStore) GroupsForChapter(ctx context.Context, chapterID string) ([]QuizGroup, error) {
	return s.listGroups(ctx,
		`SELECT id,gtype,module_id,chapter_id,title,passing_threshold,questions_json,created_at
		 FROM quiz_groups WHERE chapter_id=$1 AND gtype='chapter' AND deleted_at IS NULL`, chapterID)
}

func (s *SQLStore) GroupsForModule(ctx context.Context, moduleID string) ([]QuizGroup, error) {
	return s.listGroups(ctx,
		`SELECT id,gtype,module_id,chapter_id,title,passing_threshold,questions_json,created_at
		 FROM quiz_groups WHERE module_id=$1 AND gtype='module' AND deleted_at IS NULL`, moduleID)
}

func (s *SQLStore) listGroups(ctx context.Context, q, arg string) ([]QuizGroup, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QuizGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (QuizGroup, error) {
	var g QuizGroup
	var moduleID, chapterID sql.NullString
	var qjson string
	err := row.Scan(&g.ID, &g.Type, &moduleID, &chapterID, &g.Title, &g.PassingThreshold, &qjson, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuizGroup{}, apperr.NotFound(apperr.CodeQuizGroupNotFound, "quiz group")
		}
		return QuizGroup{}, err
	}
	g.ModuleID = moduleID.String
	g.ChapterID = chapterID.String
	if err := json.Unmarshal([]byte(qjson), &g.Questions); err != nil {
		return QuizGroup{}, err
	}
	return g, nil
}

func (s *SQLStore) PutModule(ctx context.Context, m Module) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id,title,description,sequence,year,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		   sequence=EXCLUDED.sequence, year=EXCLUDED.year`,
		m.ID, m.Title, m.Description, m.Sequence, m.Year, time.Now().Unix())
	return err
}

func (s *SQLStore) PutChapter(ctx context.Context, c Chapter) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (id,module_id,title,sequence,created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET module_id=EXCLUDED.module_id, title=EXCLUDED.title,
		   sequence=EXCLUDED.sequence`,
		c.ID, c.ModuleID, c.Title, c.Sequence, time.Now().Unix())
	return err
}

func (s *SQLStore) PutQuizGroup(ctx context.Context, g QuizGroup) error {
	qj, err := json.Marshal(g.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_groups (id,gtype,module_id,chapter_id,title,passing_threshold,questions_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET gtype=EXCLUDED.gtype, module_id=EXCLUDED.module_id,
		   chapter_id=EXCLUDED.chapter_id, title=EXCLUDED.title,
		   passing_threshold=EXCLUDED.passing_threshold, questions_json=EXCLUDED.questions_json`,
		g.ID, string(g.Type), nullStr(g.ModuleID), nullStr(g.ChapterID), g.Title,
		g.PassingThreshold, string(qj), time.Now().Unix())
	return err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
