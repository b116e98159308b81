package learning

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/dashboard"
	"github.com/brightpath/brightpath-lms/internal/grading"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/tenant"
)

// Service is the learner-facing orchestrator. Every operation follows the
// same frame: resolve the tenant connection, check the target entity, run
// the relevant component, persist, return a view.
type Service struct {
	router        *tenant.Router
	grader        grading.Grader
	graderEnabled bool
	enricher      *dashboard.Enricher
}

func NewService(router *tenant.Router, grader grading.Grader, graderEnabled bool, enricher *dashboard.Enricher) *Service {
	return &Service{router: router, grader: grader, graderEnabled: graderEnabled, enricher: enricher}
}

// Learner identifies the caller inside one tenant. The auth collaborator
// supplies it already authenticated; the core trusts it.
type Learner struct {
	TenantKey string
	StudentID string
	Year      int
}

// stores is the connection-keyed registry of typed handles over one
// tenant's database. Schema definitions are process-wide; only the
// connection varies per call.
type stores struct {
	conn     *tenant.Conn
	content  *content.SQLStore
	progress *progress.SQLStore
	attempts *grading.SQLStore
	dash     *dashboard.SQLStore
	agg      *progress.Aggregator
	pipeline *grading.Pipeline
}

func (s *Service) open(ctx context.Context, tenantKey string) (*stores, error) {
	conn, err := s.router.Get(ctx, tenantKey)
	if err != nil {
		return nil, apperr.New(apperr.CodeTenantUnavailable, 503, err.Error())
	}
	drv := string(conn.Driver)
	cs := content.NewSQLStore(conn.DB, drv)
	ps := progress.NewSQLStore(conn.DB, drv)
	as := grading.NewSQLStore(conn.DB, drv)
	agg := progress.NewAggregator(ps, cs)
	return &stores{
		conn:     conn,
		content:  cs,
		progress: ps,
		attempts: as,
		dash:     dashboard.NewSQLStore(conn.DB, drv),
		agg:      agg,
		pipeline: grading.NewPipeline(as, cs, ps, agg, s.grader, s.graderEnabled),
	}, nil
}

// StartModule gates on year and module sequence, then upserts the progress
// row. started_at is set only on the first call.
func (s *Service) StartModule(ctx context.Context, who Learner, moduleID string) (progress.ModuleProgress, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return progress.ModuleProgress{}, err
	}
	mod, err := st.content.GetModule(ctx, moduleID)
	if err != nil {
		return progress.ModuleProgress{}, err
	}
	if err := s.gateModule(ctx, st, who, mod); err != nil {
		return progress.ModuleProgress{}, err
	}
	chapters, err := st.content.ListChapters(ctx, moduleID)
	if err != nil {
		return progress.ModuleProgress{}, err
	}
	return st.progress.EnsureModuleStarted(ctx, who.StudentID, moduleID, len(chapters))
}

// StartChapter gates via the chained chapter rule and runs the explicit
// ensure-started pipeline in parent-to-child order: a chapter can never be
// started while its module shows NOT_STARTED.
func (s *Service) StartChapter(ctx context.Context, who Learner, chapterID string) (progress.ChapterProgress, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	ch, err := st.content.GetChapter(ctx, chapterID)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	mod, err := st.content.GetModule(ctx, ch.ModuleID)
	if err != nil {
		return progress.ChapterProgress{}, err
	}

	return s.ensureChapterReady(ctx, st, who, mod, ch)
}

// ensureChapterReady gates the chapter (chained rule, then the module's year
// and sequence gates inside the pipeline) and upserts both progress rows in
// parent-to-child order. Every chapter mutation goes through here so a
// locked chapter can be neither started nor completed.
func (s *Service) ensureChapterReady(ctx context.Context, st *stores, who Learner, mod content.Module, ch content.Chapter) (progress.ChapterProgress, error) {
	if err := s.gateChapter(ctx, st, who, ch); err != nil {
		return progress.ChapterProgress{}, err
	}

	var out progress.ChapterProgress
	steps := []preStep{
		{"ensure module started", func(ctx context.Context) error {
			if err := s.gateModule(ctx, st, who, mod); err != nil {
				return err
			}
			chapters, err := st.content.ListChapters(ctx, mod.ID)
			if err != nil {
				return err
			}
			_, err = st.progress.EnsureModuleStarted(ctx, who.StudentID, mod.ID, len(chapters))
			return err
		}},
		{"ensure chapter started", func(ctx context.Context) error {
			var err error
			out, err = st.progress.EnsureChapterStarted(ctx, who.StudentID, ch.ID, mod.ID, ch.Sequence)
			return err
		}},
	}
	if err := runSteps(ctx, steps); err != nil {
		return progress.ChapterProgress{}, err
	}
	return out, nil
}

// preStep is one named stage of an ensure-started pipeline.
type preStep struct {
	name string
	run  func(ctx context.Context) error
}

func runSteps(ctx context.Context, steps []preStep) error {
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			ae := apperr.From(err)
			if ae.Code == apperr.CodeInternal {
				return fmt.Errorf("%s: %w", step.name, err)
			}
			return err
		}
	}
	return nil
}

// MarkChapterComplete completes the chapter, behind the same gates as
// StartChapter: completing is never a way around a lock. A chapter with no
// quiz groups attached has its quiz requirement auto-satisfied, flagged
// distinctly from a genuine pass. The module aggregate always recalculates
// afterward.
func (s *Service) MarkChapterComplete(ctx context.Context, who Learner, chapterID string) (progress.ChapterProgress, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	ch, err := st.content.GetChapter(ctx, chapterID)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	mod, err := st.content.GetModule(ctx, ch.ModuleID)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	if _, err := s.ensureChapterReady(ctx, st, who, mod, ch); err != nil {
		return progress.ChapterProgress{}, err
	}

	groups, err := st.content.GroupsForChapter(ctx, chapterID)
	if err != nil {
		return progress.ChapterProgress{}, err
	}
	autoQuiz := len(groups) == 0

	if err := st.progress.MarkChapterCompleted(ctx, who.StudentID, chapterID, autoQuiz); err != nil {
		return progress.ChapterProgress{}, err
	}
	if _, err := st.agg.Recalculate(ctx, who.StudentID, ch.ModuleID); err != nil {
		return progress.ChapterProgress{}, err
	}

	cp, _, err := st.progress.GetChapterProgress(ctx, who.StudentID, chapterID)
	return cp, err
}

// StartQuizAttempt delegates to the grading pipeline.
func (s *Service) StartQuizAttempt(ctx context.Context, who Learner, groupID string) (grading.Attempt, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return grading.Attempt{}, err
	}
	return st.pipeline.Start(ctx, who.StudentID, groupID)
}

// SubmitQuizAnswers delegates to the grading pipeline.
func (s *Service) SubmitQuizAnswers(ctx context.Context, who Learner, attemptID string, answers []grading.Answer, elapsedSec int) (grading.Attempt, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return grading.Attempt{}, err
	}
	return st.pipeline.Submit(ctx, who.StudentID, attemptID, answers, elapsedSec)
}

func (s *Service) GetAttempt(ctx context.Context, who Learner, attemptID string) (grading.Attempt, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return grading.Attempt{}, err
	}
	a, err := st.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return grading.Attempt{}, err
	}
	if a.StudentID != who.StudentID {
		return grading.Attempt{}, apperr.NotFound(apperr.CodeAttemptNotFound, "attempt "+attemptID)
	}
	return a, nil
}

func (s *Service) ListAttempts(ctx context.Context, who Learner, groupID string) ([]grading.Attempt, error) {
	st, err := s.open(ctx, who.TenantKey)
	if err != nil {
		return nil, err
	}
	return st.attempts.ListAttempts(ctx, who.StudentID, groupID)
}

// gateModule applies the year gate plus the module prefix rule.
func (s *Service) gateModule(ctx context.Context, st *stores, who Learner, mod content.Module) error {
	siblings, err := st.content.ListModulesByYear(ctx, mod.Year)
	if err != nil {
		return err
	}
	rows, err := st.progress.ListModuleProgress(ctx, who.StudentID)
	if err != nil {
		return err
	}
	completed := map[string]bool{}
	for _, mp := range rows {
		completed[mp.ModuleID] = mp.Status == progress.StatusCompleted
	}
	d := progress.EvaluateModule(seqItem(mod.ID, mod.Sequence), mod.Year, who.Year, seqItems(siblings), completed)
	return decisionErr(d)
}

// gateChapter applies the chained rule: only the direct predecessor's quiz
// completion matters, not the full prefix.
func (s *Service) gateChapter(ctx context.Context, st *stores, who Learner, ch content.Chapter) error {
	siblings, err := st.content.ListChapters(ctx, ch.ModuleID)
	if err != nil {
		return err
	}
	rows, err := st.progress.ListChapterProgress(ctx, who.StudentID, ch.ModuleID)
	if err != nil {
		return err
	}
	completed := map[string]bool{}
	for _, cp := range rows {
		completed[cp.ChapterID] = cp.ChapterQuizCompleted
	}
	items := make([]progress.SeqItem, 0, len(siblings))
	for _, c := range siblings {
		items = append(items, progress.SeqItem{ID: c.ID, Sequence: c.Sequence})
	}
	d := progress.EvaluateChapter(seqItem(ch.ID, ch.Sequence), items, completed)
	return decisionErr(d)
}

func seqItem(id string, seq int) progress.SeqItem { return progress.SeqItem{ID: id, Sequence: seq} }

func seqItems(mods []content.Module) []progress.SeqItem {
	out := make([]progress.SeqItem, 0, len(mods))
	for _, m := range mods {
		out = append(out, progress.SeqItem{ID: m.ID, Sequence: m.Sequence})
	}
	return out
}

// decisionErr converts a gate denial into the client-facing error. Denials
// stop the operation; the decision itself never raises.
func decisionErr(d progress.Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == progress.ReasonYearLocked {
		return apperr.Forbidden(apperr.CodeYearLocked, "module is in a later year")
	}
	return apperr.Forbidden(apperr.CodeSequenceLocked, "blocked by: "+strings.Join(d.Blocking, ","))
}
