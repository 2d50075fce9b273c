// Package distribution computes concentration statistics over the
// per-category strength vector: Shannon entropy, the Gini coefficient,
// and ranked dominant/weak category lists.
//
// Every statistic is a deterministic pure function of the input vector.
package distribution

import (
	"math"
	"sort"

	"github.com/driftlab/trustdebt/internal/config"
)

// Strength is one category's total evidence strength.
type Strength struct {
	CategoryCode string  `json:"category_code"`
	Value        float64 `json:"value"`
}

// RankedCategory is one entry of the dominant or weak list.
type RankedCategory struct {
	CategoryCode string  `json:"category_code"`
	Share        float64 `json:"share"` // fraction of total strength, [0,1]
}

// Analysis is the Distribution stage artifact.
type Analysis struct {
	TotalStrength      float64          `json:"total_strength"`
	ActiveCategories   int              `json:"active_categories"` // nonzero strengths
	Entropy            float64          `json:"entropy"`
	MaxEntropy         float64          `json:"max_entropy"` // log2(N)
	GiniCoefficient    float64          `json:"gini_coefficient"`
	TopHeavy           bool             `json:"top_heavy"`
	DominantCategories []RankedCategory `json:"dominant_categories"`
	WeakCategories     []RankedCategory `json:"weak_categories"`
}

// Analyze computes all distribution statistics over the strength vector.
// A zero-strength vector yields entropy 0 and Gini 0 by convention.
func Analyze(strengths []Strength, cfg config.DistributionConfig) Analysis {
	a := Analysis{}
	n := len(strengths)
	if n == 0 {
		return a
	}
	a.MaxEntropy = math.Log2(float64(n))

	for _, s := range strengths {
		a.TotalStrength += s.Value
		if s.Value > 0 {
			a.ActiveCategories++
		}
	}
	if a.TotalStrength == 0 {
		return a
	}

	// Shannon entropy over nonzero shares.
	for _, s := range strengths {
		if s.Value <= 0 {
			continue
		}
		p := s.Value / a.TotalStrength
		a.Entropy -= p * math.Log2(p)
	}

	a.GiniCoefficient = gini(strengths, a.TotalStrength)
	a.TopHeavy = a.MaxEntropy > 0 && a.Entropy < cfg.TopHeavyEntropyRatio*a.MaxEntropy

	for _, s := range strengths {
		share := s.Value / a.TotalStrength
		entry := RankedCategory{CategoryCode: s.CategoryCode, Share: share}
		switch {
		case share > cfg.DominantShare:
			a.DominantCategories = append(a.DominantCategories, entry)
		case s.Value > 0 && share < cfg.WeakShare:
			a.WeakCategories = append(a.WeakCategories, entry)
		}
	}

	// Dominant ranked strongest first, weak ranked weakest first.
	// Code breaks ties so output order is canonical.
	sort.SliceStable(a.DominantCategories, func(i, j int) bool {
		if a.DominantCategories[i].Share != a.DominantCategories[j].Share {
			return a.DominantCategories[i].Share > a.DominantCategories[j].Share
		}
		return a.DominantCategories[i].CategoryCode < a.DominantCategories[j].CategoryCode
	})
	sort.SliceStable(a.WeakCategories, func(i, j int) bool {
		if a.WeakCategories[i].Share != a.WeakCategories[j].Share {
			return a.WeakCategories[i].Share < a.WeakCategories[j].Share
		}
		return a.WeakCategories[i].CategoryCode < a.WeakCategories[j].CategoryCode
	})

	return a
}

// gini computes the mean absolute pairwise difference divided by twice
// the mean. 0 is perfect equality, values near 1 extreme concentration.
func gini(strengths []Strength, total float64) float64 {
	n := len(strengths)
	if n == 0 || total == 0 {
		return 0
	}
	mean := total / float64(n)
	if mean == 0 {
		return 0
	}

	var diffSum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			diffSum += math.Abs(strengths[i].Value - strengths[j].Value)
		}
	}
	meanDiff := diffSum / float64(n*n)
	return meanDiff / (2 * mean)
}
