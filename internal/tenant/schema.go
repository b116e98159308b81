package tenant

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the per-school tables on first touch. Definitions are
// process-wide and immutable; only the connection varies per tenant.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  sequence INTEGER NOT NULL,
  year INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS chapters (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES modules(id),
  title TEXT NOT NULL,
  sequence INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS quiz_groups (
  id TEXT PRIMARY KEY,
  gtype TEXT NOT NULL,               -- module|chapter
  module_id TEXT,
  chapter_id TEXT,
  title TEXT NOT NULL,
  passing_threshold REAL NOT NULL DEFAULT 70,
  questions_json TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS student_module_progress (
  student_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  progress_percentage INTEGER NOT NULL DEFAULT 0,
  chapters_completed INTEGER NOT NULL DEFAULT 0,
  total_chapters INTEGER NOT NULL DEFAULT 0,
  module_quiz_completed INTEGER NOT NULL DEFAULT 0,
  started_at INTEGER,
  completed_at INTEGER,
  last_accessed_at INTEGER NOT NULL,
  PRIMARY KEY (student_id, module_id)
);

CREATE TABLE IF NOT EXISTS student_chapter_progress (
  student_id TEXT NOT NULL,
  chapter_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  chapter_sequence INTEGER NOT NULL,
  status TEXT NOT NULL,
  chapter_quiz_completed INTEGER NOT NULL DEFAULT 0,
  quiz_auto_completed INTEGER NOT NULL DEFAULT 0,
  started_at INTEGER,
  completed_at INTEGER,
  last_accessed_at INTEGER NOT NULL,
  PRIMARY KEY (student_id, chapter_id)
);

CREATE TABLE IF NOT EXISTS student_quiz_attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  quiz_group_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  status TEXT NOT NULL,              -- in_progress|completed
  score_percentage REAL NOT NULL DEFAULT 0,
  is_passed INTEGER NOT NULL DEFAULT 0,
  passing_threshold REAL NOT NULL,
  graded_by_ai INTEGER NOT NULL DEFAULT 0,
  answers_json TEXT NOT NULL,
  results_json TEXT NOT NULL DEFAULT '[]',
  tag_performance_json TEXT NOT NULL DEFAULT '[]',
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  started_at INTEGER NOT NULL,
  completed_at INTEGER,
  UNIQUE (student_id, quiz_group_id, attempt_number)
);

CREATE TABLE IF NOT EXISTS ai_feedback (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  quiz_group_id TEXT NOT NULL,
  summary TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS professor_reviews (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  reviewer TEXT NOT NULL,
  comment TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS modules (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  sequence INTEGER NOT NULL,
  year INTEGER NOT NULL,
  created_at BIGINT NOT NULL,
  deleted_at BIGINT
);

CREATE TABLE IF NOT EXISTS chapters (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES modules(id),
  title TEXT NOT NULL,
  sequence INTEGER NOT NULL,
  created_at BIGINT NOT NULL,
  deleted_at BIGINT
);

CREATE TABLE IF NOT EXISTS quiz_groups (
  id TEXT PRIMARY KEY,
  gtype TEXT NOT NULL,
  module_id TEXT,
  chapter_id TEXT,
  title TEXT NOT NULL,
  passing_threshold DOUBLE PRECISION NOT NULL DEFAULT 70,
  questions_json TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  deleted_at BIGINT
);

CREATE TABLE IF NOT EXISTS student_module_progress (
  student_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  progress_percentage INTEGER NOT NULL DEFAULT 0,
  chapters_completed INTEGER NOT NULL DEFAULT 0,
  total_chapters INTEGER NOT NULL DEFAULT 0,
  module_quiz_completed SMALLINT NOT NULL DEFAULT 0,
  started_at BIGINT,
  completed_at BIGINT,
  last_accessed_at BIGINT NOT NULL,
  PRIMARY KEY (student_id, module_id)
);

CREATE TABLE IF NOT EXISTS student_chapter_progress (
  student_id TEXT NOT NULL,
  chapter_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  chapter_sequence INTEGER NOT NULL,
  status TEXT NOT NULL,
  chapter_quiz_completed SMALLINT NOT NULL DEFAULT 0,
  quiz_auto_completed SMALLINT NOT NULL DEFAULT 0,
  started_at BIGINT,
  completed_at BIGINT,
  last_accessed_at BIGINT NOT NULL,
  PRIMARY KEY (student_id, chapter_id)
);

CREATE TABLE IF NOT EXISTS student_quiz_attempts (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  quiz_group_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  status TEXT NOT NULL,
  score_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
  is_passed SMALLINT NOT NULL DEFAULT 0,
  passing_threshold DOUBLE PRECISION NOT NULL,
  graded_by_ai SMALLINT NOT NULL DEFAULT 0,
  answers_json TEXT NOT NULL,
  results_json TEXT NOT NULL DEFAULT '[]',
  tag_performance_json TEXT NOT NULL DEFAULT '[]',
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  started_at BIGINT NOT NULL,
  completed_at BIGINT,
  UNIQUE (student_id, quiz_group_id, attempt_number)
);

CREATE TABLE IF NOT EXISTS ai_feedback (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  quiz_group_id TEXT NOT NULL,
  summary TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS professor_reviews (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  reviewer TEXT NOT NULL,
  comment TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
