package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// --- ShortLex comparator ---

// Compare orders two category codes in ShortLex order: fewer hierarchy
// segments first, ties broken by lexicographic comparison of the full
// code. Returns <0, 0, or >0 in the manner of strings.Compare.
func Compare(a, b string) int {
	da, db := Depth(a), Depth(b)
	if da != db {
		return da - db
	}
	return strings.Compare(a, b)
}

// Less reports whether code a sorts before code b in ShortLex order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// --- Order validation ---

// OrderRule names which ShortLex rule an adjacent pair violated.
type OrderRule string

const (
	RuleLength       OrderRule = "length-first"
	RuleAlphabetical OrderRule = "alphabetical"
)

// OrderViolation describes the first adjacent pair that breaks ShortLex
// order. It implements error so validation failures carry the pair and
// the broken rule.
type OrderViolation struct {
	Index int       // position of the left element of the offending pair
	Left  string    // code at Index
	Right string    // code at Index+1
	Rule  OrderRule // which comparison rule was broken
}

func (v *OrderViolation) Error() string {
	return fmt.Sprintf("shortlex order violated at positions %d-%d: %q before %q breaks the %s rule",
		v.Index+1, v.Index+2, v.Left, v.Right, v.Rule)
}

// ValidateOrder scans adjacent pairs and returns an *OrderViolation for
// the first pair out of ShortLex order, or nil when the sequence is valid.
func ValidateOrder(cats []Category) error {
	for i := 0; i+1 < len(cats); i++ {
		a, b := cats[i].Code, cats[i+1].Code
		da, db := Depth(a), Depth(b)
		if da > db {
			return &OrderViolation{Index: i, Left: a, Right: b, Rule: RuleLength}
		}
		if da == db && a > b {
			return &OrderViolation{Index: i, Left: a, Right: b, Rule: RuleAlphabetical}
		}
	}
	return nil
}

// Reorder returns a copy of the category set stable-sorted into ShortLex
// order with Position reassigned 1..N. The input slice is not modified.
func Reorder(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i].Code, out[j].Code)
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// --- Normalization state machine ---

// NormalizeState tracks the auto-repair control flow: raw input is
// Unvalidated; if it validates it becomes Valid directly; otherwise it is
// Reordered and re-validated. Unrecoverable is a defensive terminal state
// that a total-order comparator can never reach in practice.
type NormalizeState string

const (
	StateUnvalidated   NormalizeState = "unvalidated"
	StateReordered     NormalizeState = "reordered"
	StateValid         NormalizeState = "valid"
	StateUnrecoverable NormalizeState = "unrecoverable"
)

// NormalizeResult reports the outcome of Normalize: the canonical
// category set, the terminal state reached, and whether a repair
// (reorder) was applied to get there.
type NormalizeResult struct {
	Categories []Category     `json:"categories"`
	State      NormalizeState `json:"state"`
	Repaired   bool           `json:"repaired"`
	Violation  string         `json:"violation,omitempty"` // original violation when repaired
}

// Normalize validates the raw category set, transparently reordering and
// re-validating when the input is out of ShortLex order. It returns an
// error only from the Unrecoverable state, which would indicate an
// inconsistent comparator and is unreachable in normal operation.
func Normalize(raw []Category) (NormalizeResult, error) {
	if err := ValidateParents(raw); err != nil {
		return NormalizeResult{State: StateUnrecoverable}, fmt.Errorf("taxonomy: %w", err)
	}

	cats := make([]Category, len(raw))
	copy(cats, raw)

	result := NormalizeResult{State: StateUnvalidated}
	for {
		switch result.State {
		case StateUnvalidated:
			if err := ValidateOrder(cats); err != nil {
				result.Violation = err.Error()
				cats = Reorder(cats)
				result.Repaired = true
				result.State = StateReordered
				continue
			}
			// Already ordered; reassign positions so ranks are canonical.
			for i := range cats {
				cats[i].Position = i + 1
			}
			result.State = StateValid

		case StateReordered:
			if err := ValidateOrder(cats); err != nil {
				result.Violation = err.Error()
				result.State = StateUnrecoverable
				continue
			}
			result.State = StateValid

		case StateValid:
			result.Categories = cats
			return result, nil

		case StateUnrecoverable:
			return result, fmt.Errorf("taxonomy: reordered set still invalid (comparator inconsistency): %s", result.Violation)
		}
	}
}
