package progress_test

import (
	"testing"

	"github.com/brightpath/brightpath-lms/internal/progress"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		name  string
		done  int
		total int
		quiz  bool
		want  int
	}{
		{"nothing done", 0, 4, false, 0},
		{"three of four", 3, 4, false, 68}, // 67.5 rounds up
		{"all chapters, no quiz", 4, 4, false, 90},
		{"all chapters plus quiz", 4, 4, true, 100},
		{"quiz only", 0, 4, true, 10},
		{"no chapters", 0, 0, false, 90},
		{"no chapters plus quiz", 0, 0, true, 100},
		{"one of three", 1, 3, false, 30},
		{"two of three plus quiz", 2, 3, true, 70},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := progress.Percentage(tc.done, tc.total, tc.quiz); got != tc.want {
				t.Fatalf("Percentage(%d, %d, %v) = %d, want %d", tc.done, tc.total, tc.quiz, got, tc.want)
			}
		})
	}
}
