package progress

import (
	"context"
	"math"
	"time"

	"github.com/brightpath/brightpath-lms/internal/content"
)

// Aggregator recomputes the denormalized module aggregate from its chapter
// rows and quiz flag. Idempotent and safe to call redundantly from
// concurrent triggers; it must run after every event that can change
// chapter completion or module-quiz completion.
type Aggregator struct {
	progress *SQLStore
	content  *content.SQLStore
}

func NewAggregator(p *SQLStore, c *content.SQLStore) *Aggregator {
	return &Aggregator{progress: p, content: c}
}

// Percentage computes the module completion percentage: chapters earn up to
// 90 points pro rata, the module quiz the remaining 10, capped at 100. A
// module with no chapters has nothing left to read, so the chapter share is
// fully earned.
func Percentage(chaptersCompleted, totalChapters int, quizCompleted bool) int {
	pct := 90
	if totalChapters > 0 {
		pct = int(math.Round(float64(chaptersCompleted) / float64(totalChapters) * 90))
	}
	if quizCompleted {
		pct += 10
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Recalculate rebuilds the (student, module) aggregate and persists it.
// Status never reverts to not_started once the row exists.
func (a *Aggregator) Recalculate(ctx context.Context, studentID, moduleID string) (ModuleProgress, error) {
	chapters, err := a.content.ListChapters(ctx, moduleID)
	if err != nil {
		return ModuleProgress{}, err
	}
	total := len(chapters)

	mp, found, err := a.progress.GetModuleProgress(ctx, studentID, moduleID)
	if err != nil {
		return ModuleProgress{}, err
	}
	if !found {
		// A trigger can fire before the learner ever "started" the module
		// (e.g. a module quiz graded out of band). Materialize the row.
		if mp, err = a.progress.EnsureModuleStarted(ctx, studentID, moduleID, total); err != nil {
			return ModuleProgress{}, err
		}
	}

	done, err := a.progress.CountCompletedChapters(ctx, studentID, moduleID)
	if err != nil {
		return ModuleProgress{}, err
	}

	mp.ChaptersCompleted = done
	mp.TotalChapters = total
	mp.ProgressPercentage = Percentage(done, total, mp.ModuleQuizCompleted)
	if mp.ProgressPercentage >= 100 {
		mp.Status = StatusCompleted
		if mp.CompletedAt == nil {
			now := time.Now().Unix()
			mp.CompletedAt = &now
		}
	} else {
		mp.Status = StatusInProgress
		mp.CompletedAt = nil
	}

	if err := a.progress.ApplyModuleAggregate(ctx, mp); err != nil {
		return ModuleProgress{}, err
	}
	return mp, nil
}
