package progress

// Sequence gating is pure decision logic: no I/O, no clock. Callers load the
// sibling list and the learner's completed set, then ask whether the target
// item is unlocked.

const (
	ReasonYearLocked     = "year_locked"
	ReasonSequenceLocked = "sequence_locked"
)

// SeqItem is the minimal view of an ordered sibling.
type SeqItem struct {
	ID       string
	Sequence int
}

// Decision is the outcome of a gate check. A denial never raises by itself;
// the caller decides whether to surface it as a client error.
type Decision struct {
	Allowed  bool
	Reason   string
	Blocking []string // incomplete prerequisites, in sequence order
}

func allowed() Decision { return Decision{Allowed: true} }

func denied(reason string, blocking []string) Decision {
	return Decision{Reason: reason, Blocking: blocking}
}

// EvaluateModule applies the module prefix rule: every sibling with a
// strictly lower sequence must be completed. A module from a later academic
// year is always locked; one from a prior year is always unlocked. The
// lowest-sequence sibling is always unlocked so a learner can never be
// fully locked out by inconsistent data.
func EvaluateModule(target SeqItem, targetYear, learnerYear int, siblings []SeqItem, completed map[string]bool) Decision {
	if targetYear > learnerYear {
		return denied(ReasonYearLocked, nil)
	}
	if targetYear < learnerYear {
		return allowed()
	}
	if isFloor(target, siblings) {
		return allowed()
	}
	var blocking []string
	for _, s := range siblings {
		if s.ID == target.ID || s.Sequence >= target.Sequence {
			continue
		}
		if !completed[s.ID] {
			blocking = append(blocking, s.ID)
		}
	}
	if len(blocking) > 0 {
		return denied(ReasonSequenceLocked, blocking)
	}
	return allowed()
}

// EvaluateChapter applies the chained rule: only the immediately preceding
// sibling (the nearest strictly lower sequence) must be completed, not the
// full prefix. The lowest-sequence chapter is always unlocked.
func EvaluateChapter(target SeqItem, siblings []SeqItem, completed map[string]bool) Decision {
	if isFloor(target, siblings) {
		return allowed()
	}
	pred, ok := predecessor(target, siblings)
	if !ok {
		return allowed()
	}
	if !completed[pred.ID] {
		return denied(ReasonSequenceLocked, []string{pred.ID})
	}
	return allowed()
}

// isFloor reports whether target holds the minimum sequence among siblings.
func isFloor(target SeqItem, siblings []SeqItem) bool {
	for _, s := range siblings {
		if s.ID != target.ID && s.Sequence < target.Sequence {
			return false
		}
	}
	return true
}

// predecessor finds the sibling with the highest sequence strictly below the
// target's. Identical to "sequence - 1" for dense numbering, and still
// correct when a middle item was deleted.
func predecessor(target SeqItem, siblings []SeqItem) (SeqItem, bool) {
	var best SeqItem
	found := false
	for _, s := range siblings {
		if s.ID == target.ID || s.Sequence >= target.Sequence {
			continue
		}
		if !found || s.Sequence > best.Sequence {
			best, found = s, true
		}
	}
	return best, found
}
