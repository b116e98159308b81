package grading

import (
	"math"
	"sort"

	"github.com/brightpath/brightpath-lms/internal/content"
)

// ComputeTagPerformance accumulates correct/total counts per topic tag
// across the attempt's questions. correctByIndex is keyed by 1-based
// question index. Output is sorted by tag for stable storage.
func ComputeTagPerformance(questions []content.Question, correctByIndex map[int]bool) []TagPerformance {
	type acc struct{ correct, total int }
	byTag := map[string]*acc{}
	for i, q := range questions {
		for _, tag := range q.Tags {
			a, ok := byTag[tag]
			if !ok {
				a = &acc{}
				byTag[tag] = a
			}
			a.total++
			if correctByIndex[i+1] {
				a.correct++
			}
		}
	}

	out := make([]TagPerformance, 0, len(byTag))
	for tag, a := range byTag {
		pct := 0.0
		if a.total > 0 {
			pct = math.Round(float64(a.correct)/float64(a.total)*10000) / 100
		}
		out = append(out, TagPerformance{Tag: tag, Correct: a.correct, Total: a.total, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
