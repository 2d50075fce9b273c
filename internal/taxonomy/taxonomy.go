// Package taxonomy defines the canonical category hierarchy used by every
// downstream stage of the Trust Debt engine.
//
// Categories form a fixed two-level hierarchy (roots A–E with dotted
// children such as A.1) held in strict ShortLex order: fewer hierarchy
// segments sort first, ties break lexicographically on the full code.
// The ordered category set is built once per run and passed by value into
// every stage — no package-level state.
package taxonomy

import (
	"fmt"
	"strings"
)

// Category is one node in the measurement hierarchy.
// Immutable after the Taxonomy stage completes.
type Category struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	ParentCode string  `json:"parent_code,omitempty"`
	Position   int     `json:"position"` // 1-indexed canonical rank
	Units      float64 `json:"units"`
	Percentage float64 `json:"percentage"`
}

// Depth returns the number of hierarchy segments in a category code.
// "A" has depth 1, "A.1" has depth 2.
func Depth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, ".") + 1
}

// RootOf returns the first segment of a category code ("A.3" → "A").
func RootOf(code string) string {
	if i := strings.IndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return code
}

// ValidateParents checks that every non-root category references an
// existing ancestor. Returns an error naming the first orphan found.
func ValidateParents(cats []Category) error {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.Code] = true
	}
	for _, c := range cats {
		if Depth(c.Code) == 1 {
			if c.ParentCode != "" {
				return fmt.Errorf("root category %q must not declare a parent (has %q)", c.Code, c.ParentCode)
			}
			continue
		}
		if c.ParentCode == "" {
			return fmt.Errorf("category %q is missing its parent code", c.Code)
		}
		if !known[c.ParentCode] {
			return fmt.Errorf("category %q references unknown parent %q", c.Code, c.ParentCode)
		}
		if !strings.HasPrefix(c.Code, c.ParentCode+".") {
			return fmt.Errorf("category %q does not descend from declared parent %q", c.Code, c.ParentCode)
		}
	}
	return nil
}

// ComputePercentages recalculates each category's share of the total units.
// A zero total leaves all percentages at zero.
func ComputePercentages(cats []Category) []Category {
	var total float64
	for _, c := range cats {
		total += c.Units
	}
	out := make([]Category, len(cats))
	copy(out, cats)
	if total == 0 {
		for i := range out {
			out[i].Percentage = 0
		}
		return out
	}
	for i := range out {
		out[i].Percentage = out[i].Units / total * 100
	}
	return out
}

// UnitTotals returns the per-category unit weights keyed by code.
func UnitTotals(cats []Category) map[string]float64 {
	totals := make(map[string]float64, len(cats))
	for _, c := range cats {
		totals[c.Code] = c.Units
	}
	return totals
}

// Roots returns the root categories in their canonical order.
func Roots(cats []Category) []Category {
	var roots []Category
	for _, c := range cats {
		if Depth(c.Code) == 1 {
			roots = append(roots, c)
		}
	}
	return roots
}

// --- Default category set ---

// rootSpec drives DefaultCategories. Units decrease from A to E; each
// root's children split the root's units evenly.
type rootSpec struct {
	code  string
	name  string
	units float64
	kids  [8]string
}

var defaultRoots = []rootSpec{
	{"A", "Measurement", 180, [8]string{
		"Scoring", "Calibration", "Thresholds", "Normalization",
		"Sampling", "Aggregation", "Baselines", "Reproducibility",
	}},
	{"B", "Implementation", 160, [8]string{
		"Core Logic", "Data Model", "Persistence", "Interfaces",
		"Error Handling", "Concurrency", "Performance", "Dependencies",
	}},
	{"C", "Documentation", 140, [8]string{
		"Architecture", "API Reference", "Guides", "Examples",
		"Changelogs", "Decisions", "Glossary", "Onboarding",
	}},
	{"D", "Integration", 120, [8]string{
		"Build", "Packaging", "Configuration", "Transport",
		"Storage", "Observability", "Compatibility", "Security",
	}},
	{"E", "Operations", 100, [8]string{
		"Deployment", "Monitoring", "Incident Response", "Maintenance",
		"Capacity", "Backups", "Access Control", "Lifecycle",
	}},
}

// DefaultCategories returns the calibrated 45-category set: five roots
// with eight children each, already in ShortLex order with positions and
// percentages assigned. The asymmetry target in config was calibrated
// against this set.
func DefaultCategories() []Category {
	cats := make([]Category, 0, len(defaultRoots)*9)
	for _, r := range defaultRoots {
		cats = append(cats, Category{Code: r.code, Name: r.name, Units: r.units})
	}
	for _, r := range defaultRoots {
		child := r.units / float64(len(r.kids))
		for i, name := range r.kids {
			cats = append(cats, Category{
				Code:       fmt.Sprintf("%s.%d", r.code, i+1),
				Name:       name,
				ParentCode: r.code,
				Units:      child,
			})
		}
	}
	cats = Reorder(cats)
	return ComputePercentages(cats)
}
