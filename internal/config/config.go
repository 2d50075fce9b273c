// Package config holds the engine configuration for a Trust Debt run.
//
// Every calibrated constant the stages use — triangle splits, share
// ratios, the asymmetry target, severity boundaries, grading weights —
// lives here rather than in the stage code. Values are empirically
// calibrated, not derived from first principles, and are loaded from a
// YAML file with compiled-in defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MatrixConfig controls the evidence matrix construction.
type MatrixConfig struct {
	// Shares of the grand unit total allotted to each partition.
	// They must sum to 1 within a small epsilon.
	UpperShare    float64 `yaml:"upper_share"`
	LowerShare    float64 `yaml:"lower_share"`
	DiagonalShare float64 `yaml:"diagonal_share"`

	// Dominance is the dominant side's share inside a triangle cell:
	// reality in the upper triangle, intent in the lower.
	Dominance float64 `yaml:"dominance"`

	// Calibrated target for upper/lower unit totals and the relative
	// error tolerated before the asymmetry check fails.
	TargetAsymmetry    float64 `yaml:"target_asymmetry"`
	AsymmetryTolerance float64 `yaml:"asymmetry_tolerance"`
}

// DistributionConfig controls concentration analysis.
type DistributionConfig struct {
	// TopHeavyEntropyRatio flags the distribution when entropy drops
	// below this fraction of the theoretical maximum log2(N).
	TopHeavyEntropyRatio float64 `yaml:"top_heavy_entropy_ratio"`
	DominantShare        float64 `yaml:"dominant_share"`
	WeakShare            float64 `yaml:"weak_share"`
}

// GradingConfig controls composite scoring.
type GradingConfig struct {
	StrengthWeight float64 `yaml:"strength_weight"`
	CoverageWeight float64 `yaml:"coverage_weight"`
	AvgWeight      float64 `yaml:"avg_weight"`

	// Sovereignty interpretation boundaries: high / moderate / low /
	// critical at these descending score cutoffs.
	HighBound     float64 `yaml:"high_bound"`
	ModerateBound float64 `yaml:"moderate_bound"`
	LowBound      float64 `yaml:"low_bound"`
}

// AlignmentConfig controls drift severity and recommendations.
type AlignmentConfig struct {
	AlignedBound       float64 `yaml:"aligned_bound"`
	MinorBound         float64 `yaml:"minor_bound"`
	SignificantBound   float64 `yaml:"significant_bound"`
	NeutralPrior       float64 `yaml:"neutral_prior"`
	MaxRecommendations int     `yaml:"max_recommendations"`
}

// EngineConfig is the full configuration for one analysis run.
type EngineConfig struct {
	// DataDir is where run artifacts and the indexed store live.
	DataDir string `yaml:"data_dir"`

	// DictionaryPath and TaxonomyPath override the compiled-in
	// defaults when set.
	DictionaryPath string `yaml:"dictionary_path"`
	TaxonomyPath   string `yaml:"taxonomy_path"`

	Matrix       MatrixConfig       `yaml:"matrix"`
	Distribution DistributionConfig `yaml:"distribution"`
	Grading      GradingConfig      `yaml:"grading"`
	Alignment    AlignmentConfig    `yaml:"alignment"`
}

// DefaultConfig returns the calibrated defaults. The 12.98 asymmetry
// target matches the default triangle split (0.84 / 0.0647) over the
// default 45-category taxonomy.
func DefaultConfig() EngineConfig {
	home, _ := os.UserHomeDir()
	return EngineConfig{
		DataDir: filepath.Join(home, ".trustdebt"),
		Matrix: MatrixConfig{
			UpperShare:         0.84,
			LowerShare:         0.0647,
			DiagonalShare:      0.0953,
			Dominance:          0.85,
			TargetAsymmetry:    12.98,
			AsymmetryTolerance: 0.01,
		},
		Distribution: DistributionConfig{
			TopHeavyEntropyRatio: 0.60,
			DominantShare:        0.10,
			WeakShare:            0.02,
		},
		Grading: GradingConfig{
			StrengthWeight: 0.4,
			CoverageWeight: 0.3,
			AvgWeight:      0.3,
			HighBound:      0.8,
			ModerateBound:  0.6,
			LowBound:       0.4,
		},
		Alignment: AlignmentConfig{
			AlignedBound:       0.10,
			MinorBound:         0.25,
			SignificantBound:   0.50,
			NeutralPrior:       0.5,
			MaxRecommendations: 5,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error — the defaults are returned unchanged.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configured constants for internal consistency.
func (c EngineConfig) Validate() error {
	m := c.Matrix
	sum := m.UpperShare + m.LowerShare + m.DiagonalShare
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("matrix triangle shares sum to %.4f, want 1.0", sum)
	}
	if m.Dominance <= 0.5 || m.Dominance >= 1.0 {
		return fmt.Errorf("matrix dominance %.2f out of range (0.5, 1.0)", m.Dominance)
	}
	if m.TargetAsymmetry <= 0 {
		return fmt.Errorf("target asymmetry %.2f must be positive", m.TargetAsymmetry)
	}
	if m.AsymmetryTolerance <= 0 || m.AsymmetryTolerance >= 1 {
		return fmt.Errorf("asymmetry tolerance %.3f out of range (0, 1)", m.AsymmetryTolerance)
	}

	g := c.Grading
	wsum := g.StrengthWeight + g.CoverageWeight + g.AvgWeight
	if math.Abs(wsum-1.0) > 0.001 {
		return fmt.Errorf("grading weights sum to %.4f, want 1.0", wsum)
	}
	if !(g.HighBound > g.ModerateBound && g.ModerateBound > g.LowBound && g.LowBound > 0) {
		return fmt.Errorf("sovereignty bounds must descend: %.2f / %.2f / %.2f",
			g.HighBound, g.ModerateBound, g.LowBound)
	}

	a := c.Alignment
	if !(a.AlignedBound < a.MinorBound && a.MinorBound < a.SignificantBound) {
		return fmt.Errorf("alignment severity bounds must ascend: %.2f / %.2f / %.2f",
			a.AlignedBound, a.MinorBound, a.SignificantBound)
	}
	if a.NeutralPrior < 0 || a.NeutralPrior > 1 {
		return fmt.Errorf("neutral prior %.2f out of [0,1]", a.NeutralPrior)
	}

	d := c.Distribution
	if d.TopHeavyEntropyRatio <= 0 || d.TopHeavyEntropyRatio >= 1 {
		return fmt.Errorf("top-heavy entropy ratio %.2f out of (0, 1)", d.TopHeavyEntropyRatio)
	}
	if d.WeakShare >= d.DominantShare {
		return fmt.Errorf("weak share %.2f must be below dominant share %.2f", d.WeakShare, d.DominantShare)
	}

	return nil
}
