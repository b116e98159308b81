package progress_test

import (
	"reflect"
	"testing"

	"github.com/brightpath/brightpath-lms/internal/progress"
)

func seq(ids ...string) []progress.SeqItem {
	out := make([]progress.SeqItem, 0, len(ids))
	for i, id := range ids {
		out = append(out, progress.SeqItem{ID: id, Sequence: i + 1})
	}
	return out
}

func TestEvaluateModuleYearGate(t *testing.T) {
	siblings := seq("m1", "m2")

	d := progress.EvaluateModule(siblings[1], 2, 1, siblings, nil)
	if d.Allowed || d.Reason != progress.ReasonYearLocked {
		t.Fatalf("later-year module should be year-locked, got %+v", d)
	}

	// prior-year content is always open, even mid-sequence with nothing done
	d = progress.EvaluateModule(siblings[1], 1, 3, siblings, nil)
	if !d.Allowed {
		t.Fatalf("prior-year module should be unlocked, got %+v", d)
	}
}

func TestEvaluateModulePrefixRule(t *testing.T) {
	siblings := seq("m1", "m2", "m3", "m4")

	cases := []struct {
		name      string
		target    progress.SeqItem
		completed map[string]bool
		allowed   bool
		blocking  []string
	}{
		{"first module always open", siblings[0], nil, true, nil},
		{"second locked until first done", siblings[1], nil, false, []string{"m1"}},
		{"second open after first done", siblings[1], map[string]bool{"m1": true}, true, nil},
		{"gap in prefix blocks", siblings[3], map[string]bool{"m1": true, "m3": true}, false, []string{"m2"}},
		{"full prefix required", siblings[3], map[string]bool{"m3": true}, false, []string{"m1", "m2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := progress.EvaluateModule(tc.target, 1, 1, siblings, tc.completed)
			if d.Allowed != tc.allowed {
				t.Fatalf("allowed=%v, want %v (%+v)", d.Allowed, tc.allowed, d)
			}
			if !tc.allowed {
				if d.Reason != progress.ReasonSequenceLocked {
					t.Fatalf("reason=%q, want sequence_locked", d.Reason)
				}
				if !reflect.DeepEqual(d.Blocking, tc.blocking) {
					t.Fatalf("blocking=%v, want %v", d.Blocking, tc.blocking)
				}
			}
		})
	}
}

func TestEvaluateModuleFloorWithSparseSequences(t *testing.T) {
	// seeded content that starts at sequence 5: the minimum is still the floor
	siblings := []progress.SeqItem{{ID: "m5", Sequence: 5}, {ID: "m7", Sequence: 7}}
	d := progress.EvaluateModule(siblings[0], 1, 1, siblings, nil)
	if !d.Allowed {
		t.Fatalf("minimum-sequence module should be unlocked, got %+v", d)
	}
}

func TestEvaluateChapterChainedRule(t *testing.T) {
	chapters := seq("c1", "c2", "c3")

	d := progress.EvaluateChapter(chapters[0], chapters, nil)
	if !d.Allowed {
		t.Fatalf("first chapter should be unlocked, got %+v", d)
	}

	d = progress.EvaluateChapter(chapters[2], chapters, map[string]bool{"c2": true})
	if !d.Allowed {
		t.Fatalf("only the direct predecessor matters; got %+v", d)
	}

	d = progress.EvaluateChapter(chapters[2], chapters, map[string]bool{"c1": true})
	if d.Allowed || !reflect.DeepEqual(d.Blocking, []string{"c2"}) {
		t.Fatalf("chapter 3 should be blocked by c2, got %+v", d)
	}
}

func TestEvaluateChapterSkipsDeletedPredecessor(t *testing.T) {
	// c2 was removed from the catalog: c3's predecessor is now c1
	chapters := []progress.SeqItem{{ID: "c1", Sequence: 1}, {ID: "c3", Sequence: 3}}
	d := progress.EvaluateChapter(chapters[1], chapters, map[string]bool{"c1": true})
	if !d.Allowed {
		t.Fatalf("nearest lower sequence should gate, got %+v", d)
	}
}
