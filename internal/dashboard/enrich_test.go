package dashboard_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // driver for "sqlite"

	"github.com/brightpath/brightpath-lms/internal/dashboard"
	"github.com/brightpath/brightpath-lms/internal/tenant"
)

func newDashStore(t *testing.T) (*dashboard.SQLStore, *sql.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "school.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := tenant.EnsureSchema(context.Background(), db, tenant.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return dashboard.NewSQLStore(db, "sqlite"), db
}

func TestRecentFeedbackNewestFirst(t *testing.T) {
	ds, db := newDashStore(t)
	ctx := context.Background()

	for i, row := range []struct {
		id, summary string
	}{
		{"f1", "old"},
		{"f2", "new"},
	} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO ai_feedback (id,student_id,quiz_group_id,summary,created_at)
			 VALUES ($1,'s1','qg1',$2,$3)`, row.id, row.summary, int64(100+i))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	out, err := ds.RecentFeedback(ctx, "s1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(out) != 2 || out[0].Summary != "new" {
		t.Fatalf("order: %+v", out)
	}
}

func TestEnricherSwallowsFailures(t *testing.T) {
	ds, db := newDashStore(t)
	_ = db.Close() // force the store reads to fail

	e := dashboard.NewEnricher("")
	fb := e.Feedback(context.Background(), ds, "springfield-high", "s1")
	if fb == nil || len(fb) != 0 {
		t.Fatalf("want typed empty default, got %#v", fb)
	}
	rv := e.Reviews(context.Background(), ds, "s1")
	if rv == nil || len(rv) != 0 {
		t.Fatalf("want typed empty default, got %#v", rv)
	}
}

func TestEnricherReturnsRows(t *testing.T) {
	ds, db := newDashStore(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx,
		`INSERT INTO professor_reviews (id,student_id,reviewer,comment,created_at)
		 VALUES ('r1','s1','prof-x','keep going',100)`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := dashboard.NewEnricher("")
	rv := e.Reviews(ctx, ds, "s1")
	if len(rv) != 1 || rv[0].Reviewer != "prof-x" {
		t.Fatalf("reviews: %+v", rv)
	}
}
