package distribution

import (
	"math"
	"testing"

	"github.com/driftlab/trustdebt/internal/config"
)

func defaultCfg() config.DistributionConfig {
	return config.DefaultConfig().Distribution
}

func TestAnalyze_ZeroVector(t *testing.T) {
	strengths := []Strength{
		{CategoryCode: "A", Value: 0},
		{CategoryCode: "B", Value: 0},
	}
	a := Analyze(strengths, defaultCfg())

	if a.Entropy != 0 {
		t.Errorf("entropy = %f, want 0", a.Entropy)
	}
	if a.GiniCoefficient != 0 {
		t.Errorf("gini = %f, want 0", a.GiniCoefficient)
	}
	if a.ActiveCategories != 0 {
		t.Errorf("active = %d, want 0", a.ActiveCategories)
	}
	if a.TopHeavy {
		t.Error("top-heavy flag set for zero vector")
	}
}

func TestAnalyze_UniformDistribution(t *testing.T) {
	strengths := []Strength{
		{CategoryCode: "A", Value: 10},
		{CategoryCode: "B", Value: 10},
		{CategoryCode: "C", Value: 10},
		{CategoryCode: "D", Value: 10},
	}
	a := Analyze(strengths, defaultCfg())

	// Uniform over 4 → entropy = log2(4) = 2, gini = 0.
	if math.Abs(a.Entropy-2.0) > 1e-9 {
		t.Errorf("entropy = %f, want 2.0", a.Entropy)
	}
	if math.Abs(a.MaxEntropy-2.0) > 1e-9 {
		t.Errorf("max entropy = %f, want 2.0", a.MaxEntropy)
	}
	if a.GiniCoefficient > 1e-9 {
		t.Errorf("gini = %f, want 0", a.GiniCoefficient)
	}
	if a.TopHeavy {
		t.Error("uniform distribution flagged top-heavy")
	}
}

func TestAnalyze_ConcentratedDistributionIsTopHeavy(t *testing.T) {
	strengths := []Strength{
		{CategoryCode: "A", Value: 1000},
		{CategoryCode: "B", Value: 1},
		{CategoryCode: "C", Value: 1},
		{CategoryCode: "D", Value: 1},
		{CategoryCode: "E", Value: 0},
	}
	a := Analyze(strengths, defaultCfg())

	if !a.TopHeavy {
		t.Errorf("concentrated distribution not flagged top-heavy (entropy %f of max %f)",
			a.Entropy, a.MaxEntropy)
	}
	if a.GiniCoefficient <= 0.5 {
		t.Errorf("gini = %f, want > 0.5 for extreme concentration", a.GiniCoefficient)
	}
}

func TestAnalyze_DominantAndWeakLists(t *testing.T) {
	strengths := []Strength{
		{CategoryCode: "A", Value: 60}, // 60% — dominant
		{CategoryCode: "B", Value: 24}, // 24% — dominant
		{CategoryCode: "C", Value: 15}, // 15% — dominant
		{CategoryCode: "D", Value: 1},  // 1% — weak
		{CategoryCode: "E", Value: 0},  // zero — neither
	}
	a := Analyze(strengths, defaultCfg())

	if len(a.DominantCategories) != 3 {
		t.Fatalf("dominant = %d entries, want 3", len(a.DominantCategories))
	}
	if a.DominantCategories[0].CategoryCode != "A" {
		t.Errorf("strongest dominant = %s, want A", a.DominantCategories[0].CategoryCode)
	}
	if len(a.WeakCategories) != 1 || a.WeakCategories[0].CategoryCode != "D" {
		t.Errorf("weak = %v, want just D", a.WeakCategories)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := Analyze(nil, defaultCfg())
	if a.Entropy != 0 || a.GiniCoefficient != 0 || a.TotalStrength != 0 {
		t.Errorf("empty input produced nonzero stats: %+v", a)
	}
}

func TestGini_KnownValue(t *testing.T) {
	// Two values {0, 10}: mean 5, mean abs pairwise diff over all n²
	// ordered pairs = 5, gini = 5 / (2·5) = 0.5.
	strengths := []Strength{
		{CategoryCode: "A", Value: 0},
		{CategoryCode: "B", Value: 10},
	}
	a := Analyze(strengths, defaultCfg())
	if math.Abs(a.GiniCoefficient-0.5) > 1e-9 {
		t.Errorf("gini = %f, want 0.5", a.GiniCoefficient)
	}
}
