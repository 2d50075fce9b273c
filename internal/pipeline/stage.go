// Package pipeline sequences the seven analysis stages of a Trust Debt
// run and persists each stage's artifact.
//
// The pipeline continues on failure: a failed stage skips its dependents
// but never aborts the run, and the audit stage always executes last so
// every run ends with a validation verdict.
package pipeline

import (
	"fmt"
	"time"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Stage identifies one pipeline stage.
type Stage string

const (
	StageTaxonomy     Stage = "taxonomy"
	StageIndex        Stage = "index"
	StageMatrix       Stage = "matrix"
	StageDistribution Stage = "distribution"
	StageGrading      Stage = "grading"
	StageAlignment    Stage = "alignment"
	StageAudit        Stage = "audit"
)

// StageOrder is the fixed execution order. Audit is always last.
var StageOrder = []Stage{
	StageTaxonomy,
	StageIndex,
	StageMatrix,
	StageDistribution,
	StageGrading,
	StageAlignment,
	StageAudit,
}

// stagePrereqs lists which stages must succeed before a stage runs.
// Audit has none: it runs regardless of upstream failures.
var stagePrereqs = map[Stage][]Stage{
	StageTaxonomy:     nil,
	StageIndex:        {StageTaxonomy},
	StageMatrix:       {StageTaxonomy},
	StageDistribution: {StageIndex},
	StageGrading:      {StageIndex, StageDistribution},
	StageAlignment:    {StageIndex, StageGrading},
	StageAudit:        nil,
}

// StageIndexOf returns a stage's position in the fixed order, or -1.
func StageIndexOf(s Stage) int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// ValidateStage checks that s is a known stage.
func ValidateStage(s Stage) error {
	if StageIndexOf(s) < 0 {
		return fmt.Errorf("pipeline: invalid stage %q", s)
	}
	return nil
}

// Outcome tags a stage result.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// StageResult records one stage's outcome. Exactly one of ArtifactPath
// (succeeded) or Err (failed) is set; skipped stages carry neither.
type StageResult struct {
	Stage        Stage   `json:"stage"`
	Outcome      Outcome `json:"outcome"`
	ArtifactPath string  `json:"artifact_path,omitempty"`
	Err          string  `json:"error,omitempty"`
}
