package content_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // driver for "sqlite"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/tenant"
)

func newStore(t *testing.T) (*content.SQLStore, *sql.DB) {
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
	return content.NewSQLStore(db, "sqlite"), db
}

func TestPutModuleUpserts(t *testing.T) {
	cs, _ := newStore(t)
	ctx := context.Background()

	if err := cs.PutModule(ctx, content.Module{ID: "m1", Title: "Anatomy", Sequence: 1, Year: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := cs.PutModule(ctx, content.Module{ID: "m1", Title: "Anatomy II", Sequence: 2, Year: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	m, err := cs.GetModule(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Title != "Anatomy II" || m.Sequence != 2 {
		t.Fatalf("upsert did not update: %+v", m)
	}
}

func TestGetModuleNotFoundCode(t *testing.T) {
	cs, _ := newStore(t)
	_, err := cs.GetModule(context.Background(), "nope")
	if ae := apperr.From(err); ae.Code != apperr.CodeModuleNotFound {
		t.Fatalf("code=%s, want MODULE_NOT_FOUND", ae.Code)
	}
}

func TestSoftDeletedContentIsHidden(t *testing.T) {
	cs, db := newStore(t)
	ctx := context.Background()

	if err := cs.PutModule(ctx, content.Module{ID: "m1", Title: "Anatomy", Sequence: 1, Year: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE modules SET deleted_at=1 WHERE id='m1'`); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := cs.GetModule(ctx, "m1"); err == nil {
		t.Fatal("soft-deleted module should be hidden")
	}
	mods, err := cs.ListModules(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mods) != 0 {
		t.Fatalf("list should skip soft-deleted rows: %+v", mods)
	}
}

func TestQuizGroupRoundTrip(t *testing.T) {
	cs, _ := newStore(t)
	ctx := context.Background()

	in := content.QuizGroup{
		ID:               "qg1",
		Type:             content.GroupTypeChapter,
		ChapterID:        "c1",
		Title:            "Bones Quiz",
		PassingThreshold: 70,
		Questions: []content.Question{
			{ID: "q1", Text: "Largest bone?", Type: "single", Options: []string{"femur", "tibia"}, Tags: []string{"bones"}},
		},
	}
	if err := cs.PutQuizGroup(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	g, err := cs.GetQuizGroup(ctx, "qg1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.Type != content.GroupTypeChapter || g.ChapterID != "c1" || g.ModuleID != "" {
		t.Fatalf("parent fields: %+v", g)
	}
	if len(g.Questions) != 1 || g.Questions[0].Tags[0] != "bones" {
		t.Fatalf("questions: %+v", g.Questions)
	}

	groups, err := cs.GroupsForChapter(ctx, "c1")
	if err != nil {
		t.Fatalf("groups for chapter: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups: %+v", groups)
	}
	if more, _ := cs.GroupsForModule(ctx, "m1"); len(more) != 0 {
		t.Fatalf("chapter group must not appear as module group: %+v", more)
	}
}
