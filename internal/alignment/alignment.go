// Package alignment compares stated intent against observed reality per
// category and derives drift severity and actionable recommendations.
package alignment

import (
	"fmt"
	"sort"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/grading"
)

// Severity classifies a category's drift magnitude.
type Severity string

const (
	SeverityAligned     Severity = "aligned"
	SeverityMinor       Severity = "minor"
	SeveritySignificant Severity = "significant"
	SeverityCritical    Severity = "critical"
)

var validSeverities = map[Severity]bool{
	SeverityAligned:     true,
	SeverityMinor:       true,
	SeveritySignificant: true,
	SeverityCritical:    true,
}

// ValidateSeverity checks that s is a known severity value.
func ValidateSeverity(s Severity) error {
	if !validSeverities[s] {
		return fmt.Errorf("alignment: invalid severity %q", s)
	}
	return nil
}

// CategoryDrift is one category's intent/reality comparison.
//
// Drift is signed: positive means intent outweighs reality (promised but
// under-delivered), negative means reality outweighs intent (built but
// undocumented).
type CategoryDrift struct {
	CategoryCode string   `json:"category_code"`
	IntentScore  float64  `json:"intent_score"`  // [0, 1]
	RealityScore float64  `json:"reality_score"` // [0, 1]
	Drift        float64  `json:"drift"`         // intent − reality
	Severity     Severity `json:"severity"`
}

// Recommendation is one suggested correction, phrased by drift direction.
type Recommendation struct {
	CategoryCode string   `json:"category_code"`
	Severity     Severity `json:"severity"`
	Drift        float64  `json:"drift"`
	Action       string   `json:"action"`
}

// Report is the Alignment stage artifact.
type Report struct {
	Categories       []CategoryDrift  `json:"categories"`
	OverallAlignment float64          `json:"overall_alignment"` // 1 − mean |drift|, floored at 0
	SeverityCounts   map[Severity]int `json:"severity_counts"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// Analyze derives drift for every graded category. Intent scores come
// from the intent-side keyword counts normalized to the strongest
// category; categories with no intent evidence take the neutral prior.
// Reality scores are the composite grading scores.
func Analyze(grades []grading.CategoryGrade, intentCounts map[string]int, cfg config.AlignmentConfig) Report {
	rep := Report{
		Categories:     make([]CategoryDrift, 0, len(grades)),
		SeverityCounts: map[Severity]int{},
	}

	var maxIntent int
	for _, n := range intentCounts {
		if n > maxIntent {
			maxIntent = n
		}
	}

	var absSum float64
	for _, g := range grades {
		intent := cfg.NeutralPrior
		if n, ok := intentCounts[g.CategoryCode]; ok && n > 0 && maxIntent > 0 {
			intent = float64(n) / float64(maxIntent)
		}

		d := CategoryDrift{
			CategoryCode: g.CategoryCode,
			IntentScore:  intent,
			RealityScore: g.Score,
			Drift:        intent - g.Score,
		}
		d.Severity = severityFor(abs(d.Drift), cfg)
		absSum += abs(d.Drift)

		rep.Categories = append(rep.Categories, d)
		rep.SeverityCounts[d.Severity]++
	}

	if n := len(rep.Categories); n > 0 {
		rep.OverallAlignment = 1 - absSum/float64(n)
		if rep.OverallAlignment < 0 {
			rep.OverallAlignment = 0
		}
	}

	rep.Recommendations = recommend(rep.Categories, cfg.MaxRecommendations)
	return rep
}

// severityFor maps |drift| to its band. Boundaries are half-open: a
// drift exactly on a boundary takes the more severe band.
func severityFor(absDrift float64, cfg config.AlignmentConfig) Severity {
	switch {
	case absDrift < cfg.AlignedBound:
		return SeverityAligned
	case absDrift < cfg.MinorBound:
		return SeverityMinor
	case absDrift < cfg.SignificantBound:
		return SeveritySignificant
	default:
		return SeverityCritical
	}
}

// recommend picks the worst-drifting non-aligned categories, largest
// |drift| first with code as tiebreak, capped at max entries.
func recommend(drifts []CategoryDrift, max int) []Recommendation {
	candidates := make([]CategoryDrift, 0, len(drifts))
	for _, d := range drifts {
		if d.Severity != SeverityAligned {
			candidates = append(candidates, d)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := abs(candidates[i].Drift), abs(candidates[j].Drift)
		if di != dj {
			return di > dj
		}
		return candidates[i].CategoryCode < candidates[j].CategoryCode
	})

	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, d := range candidates {
		recs = append(recs, Recommendation{
			CategoryCode: d.CategoryCode,
			Severity:     d.Severity,
			Drift:        d.Drift,
			Action:       actionFor(d),
		})
	}
	return recs
}

// actionFor phrases the correction in the direction of the drift.
func actionFor(d CategoryDrift) string {
	if d.Drift > 0 {
		return fmt.Sprintf("category %s is promised but under-delivered: add implementation evidence to close the %.2f intent surplus", d.CategoryCode, d.Drift)
	}
	return fmt.Sprintf("category %s is built but under-documented: record the intent behind the %.2f reality surplus", d.CategoryCode, -d.Drift)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
