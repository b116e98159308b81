package learning

import (
	"context"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/dashboard"
	"github.com/brightpath/brightpath-lms/internal/progress"
)

// Dashboard is the read-only learner overview. Enrichment fields degrade to
// empty lists when their sources fail; counts come straight from the
// tenant's progress and attempt tables.
type Dashboard struct {
	StudentID         string                      `json:"student_id"`
	Modules           []progress.ModuleProgress   `json:"modules"`
	ModulesInProgress int                         `json:"modules_in_progress"`
	ModulesCompleted  int                         `json:"modules_completed"`
	ChaptersCompleted int                         `json:"chapters_completed"`
	AttemptsTotal     int                         `json:"attempts_total"`
	AttemptsPassed    int                         `json:"attempts_passed"`
	RecentFeedback    []dashboard.FeedbackSummary `json:"recent_feedback"`
	ProfessorReviews  []dashboard.ProfessorReview `json:"professor_reviews"`
}

// GetStudentDashboard fans out across progress and attempt counts, then adds
// best-effort enrichment. Enrichment failures are swallowed: the dashboard
// is advisory, not authoritative.
func (s *Service) GetStudentDashboard(ctx context.Context, who Learner) (Dashboard, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return Dashboard{}, err
	}

	mods, err := st.progress.ListModuleProgress(ctx, who.StudentID)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{StudentID: who.StudentID, Modules: mods}
	if d.Modules == nil {
		d.Modules = []progress.ModuleProgress{}
	}
	for _, mp := range mods {
		switch mp.Status {
		case progress.StatusCompleted:
			d.ModulesCompleted++
		case progress.StatusInProgress:
			d.ModulesInProgress++
		}
		d.ChaptersCompleted += mp.ChaptersCompleted
	}

	d.AttemptsTotal, d.AttemptsPassed, err = st.attempts.CountAttempts(ctx, who.StudentID)
	if err != nil {
		return Dashboard{}, err
	}

	d.RecentFeedback = s.enricher.Feedback(ctx, st.dash, who.TenantKey, who.StudentID)
	d.ProfessorReviews = s.enricher.Reviews(ctx, st.dash, who.StudentID)
	return d, nil
}

// ModuleView is a module with the caller's unlock state and progress.
type ModuleView struct {
	content.Module
	Unlocked           bool            `json:"unlocked"`
	LockedReason       string          `json:"locked_reason,omitempty"`
	Status             progress.Status `json:"status"`
	ProgressPercentage int             `json:"progress_percentage"`
}

// ListModules returns every module with per-student lock state, ordered by
// (year, sequence).
func (s *Service) ListModules(ctx context.Context, who Learner) ([]ModuleView, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return nil, err
	}
	mods, err := st.content.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := st.progress.ListModuleProgress(ctx, who.StudentID)
	if err != nil {
		return nil, err
	}
	byModule := map[string]progress.ModuleProgress{}
	completed := map[string]bool{}
	for _, mp := range rows {
		byModule[mp.ModuleID] = mp
		completed[mp.ModuleID] = mp.Status == progress.StatusCompleted
	}

	byYear := map[int][]progress.SeqItem{}
	for _, m := range mods {
		byYear[m.Year] = append(byYear[m.Year], progress.SeqItem{ID: m.ID, Sequence: m.Sequence})
	}

	out := make([]ModuleView, 0, len(mods))
	for _, m := range mods {
		v := ModuleView{Module: m, Status: progress.StatusNotStarted}
		if mp, ok := byModule[m.ID]; ok {
			v.Status = mp.Status
			v.ProgressPercentage = mp.ProgressPercentage
		}
		d := progress.EvaluateModule(progress.SeqItem{ID: m.ID, Sequence: m.Sequence},
			m.Year, who.Year, byYear[m.Year], completed)
		v.Unlocked = d.Allowed
		v.LockedReason = d.Reason
		out = append(out, v)
	}
	return out, nil
}

// ChapterView is a chapter with the caller's unlock state and progress.
type ChapterView struct {
	content.Chapter
	Unlocked             bool            `json:"unlocked"`
	Status               progress.Status `json:"status"`
	ChapterQuizCompleted bool            `json:"chapter_quiz_completed"`
	QuizAutoCompleted    bool            `json:"quiz_auto_completed"`
}

func (s *Service) ListChapters(ctx context.Context, who Learner, moduleID string) ([]ChapterView, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return nil, err
	}
	if _, err := st.content.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	chapters, err := st.content.ListChapters(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	rows, err := st.progress.ListChapterProgress(ctx, who.StudentID, moduleID)
	if err != nil {
		return nil, err
	}
	byChapter := map[string]progress.ChapterProgress{}
	completed := map[string]bool{}
	for _, cp := range rows {
		byChapter[cp.ChapterID] = cp
		completed[cp.ChapterID] = cp.ChapterQuizCompleted
	}
	items := make([]progress.SeqItem, 0, len(chapters))
	for _, c := range chapters {
		items = append(items, progress.SeqItem{ID: c.ID, Sequence: c.Sequence})
	}

	out := make([]ChapterView, 0, len(chapters))
	for _, c := range chapters {
		v := ChapterView{Chapter: c, Status: progress.StatusNotStarted}
		if cp, ok := byChapter[c.ID]; ok {
			v.Status = cp.Status
			v.ChapterQuizCompleted = cp.ChapterQuizCompleted
			v.QuizAutoCompleted = cp.QuizAutoCompleted
		}
		d := progress.EvaluateChapter(progress.SeqItem{ID: c.ID, Sequence: c.Sequence}, items, completed)
		v.Unlocked = d.Allowed
		out = append(out, v)
	}
	return out, nil
}

// Authoring passthroughs for the content collaborator surface. The progress
// core itself only ever reads content.

func (s *Service) UpsertModule(ctx context.Context, tenantKey string, m content.Module) error {
	st, err := s.open(ctx, tenantKey)
	if err != nil {
		return err
	}
	return st.content.PutModule(ctx, m)
}

func (s *Service) UpsertChapter(ctx context.Context, tenantKey string, c content.Chapter) error {
	st, err := s.open(ctx, tenantKey)
	if err != nil {
		return err
	}
	return st.content.PutChapter(ctx, c)
}

func (s *Service) UpsertQuizGroup(ctx context.Context, tenantKey string, g content.QuizGroup) error {
	st, err := s.open(ctx, tenantKey)
	if err != nil {
		return err
	}
	return st.content.PutQuizGroup(ctx, g)
}
