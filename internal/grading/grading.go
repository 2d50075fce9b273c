// Package grading converts per-category evidence into composite scores,
// letter grades, percentile ranks, and the aggregate sovereignty score.
//
// Every taxonomy category receives exactly one grade record. Categories
// with no keyword evidence score 0 and grade F, they are never omitted.
package grading

import (
	"sort"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/distribution"
	"github.com/driftlab/trustdebt/internal/index"
)

// CategoryGrade is one category's graded evidence snapshot.
type CategoryGrade struct {
	CategoryCode    string  `json:"category_code"`
	Score           float64 `json:"score"` // [0, 1]
	LetterGrade     string  `json:"letter_grade"`
	Percentile      float64 `json:"percentile"` // [0, 100]
	TotalStrength   int     `json:"total_strength"`
	DocumentCount   int     `json:"document_count"`
	AvgStrength     float64 `json:"avg_strength"`
	PercentOfCorpus float64 `json:"percent_of_corpus"`
}

// Sovereignty is the aggregate trustworthiness of the measured system:
// the arithmetic mean of all category scores, mapped through the same
// banding as individual grades.
type Sovereignty struct {
	Score          float64 `json:"score"`
	Grade          string  `json:"grade"`
	Interpretation string  `json:"interpretation"`
}

// Report is the Grading stage artifact.
type Report struct {
	Categories  []CategoryGrade `json:"categories"`
	Sovereignty Sovereignty     `json:"sovereignty"`
}

// band is one non-overlapping grade band. Bands cover [0,1] totally:
// a score belongs to the first band whose cutoff it reaches.
type band struct {
	cutoff float64
	letter string
}

// bands descend in 0.05 steps from A+ at 0.95; everything below 0.35
// is F. The scheme is monotone, total, and non-overlapping.
var bands = []band{
	{0.95, "A+"}, {0.90, "A"}, {0.85, "A-"},
	{0.80, "B+"}, {0.75, "B"}, {0.70, "B-"},
	{0.65, "C+"}, {0.60, "C"}, {0.55, "C-"},
	{0.50, "D+"}, {0.45, "D"}, {0.40, "D-"},
	{0.35, "E"},
}

// Letter maps a score in [0,1] to its grade band.
func Letter(score float64) string {
	for _, b := range bands {
		if score >= b.cutoff {
			return b.letter
		}
	}
	return "F"
}

// Grade scores every category from its evidence and the distribution
// analysis, then aggregates the sovereignty score.
func Grade(evidence []index.CategoryEvidence, dist distribution.Analysis, cfg config.GradingConfig) Report {
	var maxStrength, maxDocs, maxAvg float64
	for _, ev := range evidence {
		if s := float64(ev.TotalStrength); s > maxStrength {
			maxStrength = s
		}
		if d := float64(ev.DocumentCount); d > maxDocs {
			maxDocs = d
		}
		if ev.AvgStrength > maxAvg {
			maxAvg = ev.AvgStrength
		}
	}

	report := Report{Categories: make([]CategoryGrade, 0, len(evidence))}
	var scoreSum float64

	for _, ev := range evidence {
		score := compositeScore(ev, maxStrength, maxDocs, maxAvg, cfg)
		scoreSum += score

		pct := ev.PercentOfCorpus
		if dist.TotalStrength > 0 {
			pct = float64(ev.TotalStrength) / dist.TotalStrength * 100
		}

		report.Categories = append(report.Categories, CategoryGrade{
			CategoryCode:    ev.CategoryCode,
			Score:           score,
			LetterGrade:     Letter(score),
			TotalStrength:   ev.TotalStrength,
			DocumentCount:   ev.DocumentCount,
			AvgStrength:     ev.AvgStrength,
			PercentOfCorpus: pct,
		})
	}

	assignPercentiles(report.Categories)

	if n := len(report.Categories); n > 0 {
		score := scoreSum / float64(n)
		report.Sovereignty = Sovereignty{
			Score:          score,
			Grade:          Letter(score),
			Interpretation: interpret(score, cfg),
		}
	} else {
		report.Sovereignty = Sovereignty{Grade: "F", Interpretation: interpret(0, cfg)}
	}

	return report
}

// compositeScore is the weighted combination of strength relative to the
// corpus maximum, coverage relative to the widest-covered category, and
// the category's own per-document average. Clamped to 1.0.
//
// Coverage is normalized against the best-covered active category rather
// than the raw category count: it measures how broadly a category's
// evidence spreads relative to its peers, so the top category always
// scores a full coverage term even in a sparse corpus.
func compositeScore(ev index.CategoryEvidence, maxStrength, maxDocs, maxAvg float64, cfg config.GradingConfig) float64 {
	if ev.TotalStrength == 0 {
		return 0
	}

	var strength, coverage, avg float64
	if maxStrength > 0 {
		strength = float64(ev.TotalStrength) / maxStrength
	}
	if maxDocs > 0 {
		coverage = float64(ev.DocumentCount) / maxDocs
	}
	if maxAvg > 0 {
		avg = ev.AvgStrength / maxAvg
	}

	score := cfg.StrengthWeight*strength + cfg.CoverageWeight*coverage + cfg.AvgWeight*avg
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// assignPercentiles ranks each category by score position. Equal scores
// share a percentile, so the ranking is stable for identical inputs.
func assignPercentiles(grades []CategoryGrade) {
	n := len(grades)
	if n == 0 {
		return
	}
	if n == 1 {
		grades[0].Percentile = 100
		return
	}

	sorted := make([]float64, n)
	for i, g := range grades {
		sorted[i] = g.Score
	}
	sort.Float64s(sorted)

	for i := range grades {
		below := sort.SearchFloat64s(sorted, grades[i].Score)
		grades[i].Percentile = float64(below) / float64(n-1) * 100
	}
}

// interpret maps the sovereignty score onto its interpretation string.
func interpret(score float64, cfg config.GradingConfig) string {
	switch {
	case score >= cfg.HighBound:
		return "high sovereignty: stated intent and observed reality are strongly aligned"
	case score >= cfg.ModerateBound:
		return "moderate sovereignty: most categories carry credible evidence"
	case score >= cfg.LowBound:
		return "low sovereignty: evidence is thin or uneven across categories"
	default:
		return "critical sovereignty: the measured system lacks trustworthy evidence"
	}
}
