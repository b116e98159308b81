package grading

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/brightpath-lms/internal/apperr"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/progress"
)

// Pipeline drives the attempt state machine: idempotent start, AI-graded
// submit with a deterministic zero-score fallback, tag statistics, and the
// progress side effects of a pass. Attempts move IN_PROGRESS -> COMPLETED,
// one way.
type Pipeline struct {
	attempts *SQLStore
	content  *content.SQLStore
	progress *progress.SQLStore
	agg      *progress.Aggregator
	grader   Grader
	enabled  bool
}

func NewPipeline(attempts *SQLStore, cs *content.SQLStore, ps *progress.SQLStore, agg *progress.Aggregator, grader Grader, enabled bool) *Pipeline {
	return &Pipeline{attempts: attempts, content: cs, progress: ps, agg: agg, grader: grader, enabled: enabled}
}

// Start returns the existing in-progress attempt unchanged if one exists
// (no duplicate attempts), otherwise gate-checks access and creates attempt
// number last+1.
func (p *Pipeline) Start(ctx context.Context, studentID, groupID string) (Attempt, error) {
	g, err := p.content.GetQuizGroup(ctx, groupID)
	if err != nil {
		return Attempt{}, err
	}

	if a, ok, err := p.attempts.ActiveAttempt(ctx, studentID, groupID); err != nil {
		return Attempt{}, err
	} else if ok {
		return a, nil
	}

	if err := p.gate(ctx, studentID, g); err != nil {
		return Attempt{}, err
	}

	last, err := p.attempts.LastAttemptNumber(ctx, studentID, groupID)
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		QuizGroupID:      groupID,
		AttemptNumber:    last + 1,
		Status:           AttemptInProgress,
		PassingThreshold: g.PassingThreshold,
		Answers:          []Answer{},
		StartedAt:        time.Now().Unix(),
	}
	if err := p.attempts.Insert(ctx, a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// gate validates quiz access. Module quizzes require every sibling chapter
// completed with its quiz requirement satisfied; chapter quizzes require the
// chapter itself marked complete.
func (p *Pipeline) gate(ctx context.Context, studentID string, g content.QuizGroup) error {
	switch g.Type {
	case content.GroupTypeChapter:
		cp, found, err := p.progress.GetChapterProgress(ctx, studentID, g.ChapterID)
		if err != nil {
			return err
		}
		if !found || cp.Status != progress.StatusCompleted {
			return apperr.Forbidden(apperr.CodeSequenceLocked, "chapter not completed: "+g.ChapterID)
		}
		return nil
	case content.GroupTypeModule:
		chapters, err := p.content.ListChapters(ctx, g.ModuleID)
		if err != nil {
			return err
		}
		rows, err := p.progress.ListChapterProgress(ctx, studentID, g.ModuleID)
		if err != nil {
			return err
		}
		done := map[string]bool{}
		for _, cp := range rows {
			done[cp.ChapterID] = cp.Status == progress.StatusCompleted && cp.ChapterQuizCompleted
		}
		var blocking []string
		for _, ch := range chapters {
			if !done[ch.ID] {
				blocking = append(blocking, ch.ID)
			}
		}
		if len(blocking) > 0 {
			return apperr.Forbidden(apperr.CodeSequenceLocked,
				"chapters incomplete: "+strings.Join(blocking, ","))
		}
		return nil
	default:
		return apperr.NotFound(apperr.CodeQuizGroupNotFound, "unknown group type")
	}
}

// Submit grades the learner's attempt and finalizes it. Grader failure never
// fails the submission: the attempt completes with score 0 and GradedByAI
// false. A pass triggers the progress aggregator for the owning chapter or
// module.
func (p *Pipeline) Submit(ctx context.Context, studentID, attemptID string, answers []Answer, elapsedSec int) (Attempt, error) {
	a, err := p.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.StudentID != studentID {
		// Cross-student attempt IDs are indistinguishable from missing ones.
		return Attempt{}, apperr.NotFound(apperr.CodeAttemptNotFound, "attempt "+attemptID)
	}
	if a.Status != AttemptInProgress {
		return Attempt{}, apperr.Conflict(apperr.CodeNoActiveAttempt,
			"attempt "+attemptID+" is not in progress")
	}

	g, err := p.content.GetQuizGroup(ctx, a.QuizGroupID)
	if err != nil {
		return Attempt{}, err
	}
	mod, err := p.owningModule(ctx, g)
	if err != nil {
		return Attempt{}, err
	}

	a.Answers = answers
	a.TimeSpentSec = elapsedSec

	correct := map[int]bool{}
	res, err := p.grade(ctx, buildValidateRequest(mod, g, answers))
	if err != nil {
		if !errors.Is(err, errGraderDisabled) {
			log.Printf("grading: grader failed for attempt %s, using fallback: %v", a.ID, err)
		}
		a.ScorePercentage = 0
		a.GradedByAI = false
		a.Results = nil
	} else {
		a.ScorePercentage = res.ScorePercentage
		a.GradedByAI = true
		a.Results = make([]QuestionResult, 0, len(res.QuestionsResults))
		for _, r := range res.QuestionsResults {
			correct[r.QuestionIndex] = r.IsCorrect
			a.Results = append(a.Results, QuestionResult{
				QuestionIndex: r.QuestionIndex,
				IsCorrect:     r.IsCorrect,
				Explanation:   r.Explanation,
				Feedback:      r.Feedback,
			})
		}
	}
	a.IsPassed = a.ScorePercentage >= a.PassingThreshold
	a.TagPerformance = ComputeTagPerformance(g.Questions, correct)

	if err := p.attempts.Finalize(ctx, a); err != nil {
		return Attempt{}, err
	}

	if a.GradedByAI {
		if summary := feedbackSummary(a.Results); summary != "" {
			if err := p.attempts.RecordFeedback(ctx, uuid.NewString(), studentID, a.QuizGroupID, summary); err != nil {
				log.Printf("grading: recording feedback for attempt %s: %v", a.ID, err)
			}
		}
	}

	if a.IsPassed {
		p.applyPass(ctx, studentID, g, mod.ID)
	}
	return a, nil
}

// applyPass records the quiz completion and recalculates the module
// aggregate. Aggregation errors are logged, not returned: the percentage
// self-heals on the next triggering event.
func (p *Pipeline) applyPass(ctx context.Context, studentID string, g content.QuizGroup, moduleID string) {
	var err error
	switch g.Type {
	case content.GroupTypeChapter:
		err = p.progress.SetChapterQuizCompleted(ctx, studentID, g.ChapterID)
	case content.GroupTypeModule:
		err = p.progress.SetModuleQuizCompleted(ctx, studentID, moduleID)
	}
	if err != nil {
		log.Printf("grading: recording quiz pass for student %s group %s: %v", studentID, g.ID, err)
		return
	}
	if _, err := p.agg.Recalculate(ctx, studentID, moduleID); err != nil {
		log.Printf("grading: recalculating module %s for student %s: %v", moduleID, studentID, err)
	}
}

func (p *Pipeline) owningModule(ctx context.Context, g content.QuizGroup) (content.Module, error) {
	moduleID := g.ModuleID
	if g.Type == content.GroupTypeChapter {
		ch, err := p.content.GetChapter(ctx, g.ChapterID)
		if err != nil {
			return content.Module{}, err
		}
		moduleID = ch.ModuleID
	}
	return p.content.GetModule(ctx, moduleID)
}

var errGraderDisabled = errors.New("grading: AI grader disabled")

func (p *Pipeline) grade(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	if !p.enabled || p.grader == nil {
		return ValidateResponse{}, errGraderDisabled
	}
	return p.grader.Validate(ctx, req)
}

func buildValidateRequest(mod content.Module, g content.QuizGroup, answers []Answer) ValidateRequest {
	byQuestion := map[string][]string{}
	for _, ans := range answers {
		byQuestion[ans.QuizID] = ans.SelectedOptions
	}
	qs := make([]ValidateQuestion, 0, len(g.Questions))
	for _, q := range g.Questions {
		qs = append(qs, ValidateQuestion{
			Question:     q.Text,
			QuestionType: q.Type,
			Options:      q.Options,
			UserAnswer:   strings.Join(byQuestion[q.ID], ", "),
		})
	}
	return ValidateRequest{
		ModuleTitle:       mod.Title,
		ModuleDescription: mod.Description,
		ModuleContext:     g.Title,
		Questions:         qs,
		MaxResults:        len(qs),
	}
}

// feedbackSummary joins the first few non-empty feedback lines into a short
// summary for the dashboard's recent-feedback enrichment.
func feedbackSummary(results []QuestionResult) string {
	var lines []string
	for _, r := range results {
		if r.Feedback == "" {
			continue
		}
		lines = append(lines, r.Feedback)
		if len(lines) == 3 {
			break
		}
	}
	return strings.Join(lines, " ")
}
