package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.DataDir == "" {
		t.Error("default DataDir should not be empty")
	}
	if cfg.Matrix.TargetAsymmetry != 12.98 {
		t.Errorf("TargetAsymmetry = %v, want 12.98", cfg.Matrix.TargetAsymmetry)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file should not error: %v", err)
	}
	if cfg.Matrix.UpperShare != DefaultConfig().Matrix.UpperShare {
		t.Error("missing file should leave defaults unchanged")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `data_dir: /tmp/td-test
matrix:
  upper_share: 0.80
  lower_share: 0.10
  diagonal_share: 0.10
  dominance: 0.85
  target_asymmetry: 8.0
  asymmetry_tolerance: 0.02
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/tmp/td-test" {
		t.Errorf("DataDir = %q, want /tmp/td-test", cfg.DataDir)
	}
	if cfg.Matrix.TargetAsymmetry != 8.0 {
		t.Errorf("TargetAsymmetry = %v, want 8.0", cfg.Matrix.TargetAsymmetry)
	}
	// Sections the file does not touch keep their defaults.
	if cfg.Grading.StrengthWeight != 0.4 {
		t.Errorf("StrengthWeight = %v, want default 0.4", cfg.Grading.StrengthWeight)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("matrix: [not a map"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `matrix:
  upper_share: 0.5
  lower_share: 0.1
  diagonal_share: 0.1
  dominance: 0.85
  target_asymmetry: 12.98
  asymmetry_tolerance: 0.01
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error when shares do not sum to 1")
	}
	if !strings.Contains(err.Error(), "shares sum") {
		t.Errorf("error = %v, want mention of share sum", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"dominance too low", func(c *EngineConfig) { c.Matrix.Dominance = 0.5 }},
		{"dominance too high", func(c *EngineConfig) { c.Matrix.Dominance = 1.0 }},
		{"negative asymmetry target", func(c *EngineConfig) { c.Matrix.TargetAsymmetry = -1 }},
		{"zero tolerance", func(c *EngineConfig) { c.Matrix.AsymmetryTolerance = 0 }},
		{"grading weights off", func(c *EngineConfig) { c.Grading.StrengthWeight = 0.9 }},
		{"sovereignty bounds not descending", func(c *EngineConfig) { c.Grading.ModerateBound = 0.9 }},
		{"severity bounds not ascending", func(c *EngineConfig) { c.Alignment.MinorBound = 0.05 }},
		{"neutral prior out of range", func(c *EngineConfig) { c.Alignment.NeutralPrior = 1.5 }},
		{"entropy ratio out of range", func(c *EngineConfig) { c.Distribution.TopHeavyEntropyRatio = 1.0 }},
		{"weak share above dominant", func(c *EngineConfig) { c.Distribution.WeakShare = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
