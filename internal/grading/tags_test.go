package grading_test

import (
	"reflect"
	"testing"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/grading"
)

func TestComputeTagPerformance(t *testing.T) {
	questions := []content.Question{
		{ID: "q1", Tags: []string{"anatomy", "bones"}},
		{ID: "q2", Tags: []string{"anatomy"}},
		{ID: "q3", Tags: []string{"bones"}},
		{ID: "q4"}, // untagged questions contribute nothing
	}
	correct := map[int]bool{1: true, 2: false, 3: true, 4: true}

	got := grading.ComputeTagPerformance(questions, correct)
	want := []grading.TagPerformance{
		{Tag: "anatomy", Correct: 1, Total: 2, Percentage: 50},
		{Tag: "bones", Correct: 2, Total: 2, Percentage: 100},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeTagPerformanceRounding(t *testing.T) {
	questions := []content.Question{
		{ID: "q1", Tags: []string{"physio"}},
		{ID: "q2", Tags: []string{"physio"}},
		{ID: "q3", Tags: []string{"physio"}},
	}
	got := grading.ComputeTagPerformance(questions, map[int]bool{1: true})
	if len(got) != 1 || got[0].Percentage != 33.33 {
		t.Fatalf("1/3 should round to 33.33, got %+v", got)
	}
}

func TestComputeTagPerformanceEmpty(t *testing.T) {
	if got := grading.ComputeTagPerformance(nil, nil); len(got) != 0 {
		t.Fatalf("no questions should yield no tags, got %+v", got)
	}
}
