package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Enricher loads best-effort dashboard extras. Every source failure is
// swallowed and replaced with a typed empty default: the dashboard is
// advisory, not authoritative. An optional redis cache fronts the feedback
// reads; cache errors are swallowed too.
type Enricher struct {
	rdb *redis.Client // nil when caching is disabled
	ttl time.Duration
}

func NewEnricher(redisAddr string) *Enricher {
	e := &Enricher{ttl: 5 * time.Minute}
	if redisAddr != "" {
		e.rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
	}
	return e
}

const enrichLimit = 5

// Feedback returns the student's recent AI feedback summaries, never an error.
func (e *Enricher) Feedback(ctx context.Context, store *SQLStore, tenantKey, studentID string) []FeedbackSummary {
	key := "feedback:" + tenantKey + ":" + studentID

	if e.rdb != nil {
		if data, err := e.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []FeedbackSummary
			if json.Unmarshal(data, &cached) == nil {
				return cached
			}
		}
	}

	out, err := store.RecentFeedback(ctx, studentID, enrichLimit)
	if err != nil {
		log.Printf("dashboard: feedback enrichment failed for %s: %v", studentID, err)
		return []FeedbackSummary{}
	}
	if out == nil {
		out = []FeedbackSummary{}
	}

	if e.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := e.rdb.Set(ctx, key, data, e.ttl).Err(); err != nil {
				log.Printf("dashboard: caching feedback for %s: %v", studentID, err)
			}
		}
	}
	return out
}

// Reviews returns the student's recent professor reviews, never an error.
func (e *Enricher) Reviews(ctx context.Context, store *SQLStore, studentID string) []ProfessorReview {
	out, err := store.RecentReviews(ctx, studentID, enrichLimit)
	if err != nil {
		log.Printf("dashboard: review enrichment failed for %s: %v", studentID, err)
		return []ProfessorReview{}
	}
	if out == nil {
		out = []ProfessorReview{}
	}
	return out
}
