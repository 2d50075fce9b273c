// Package audit runs the post-hoc validation checks over a completed
// analysis run. Findings are recorded, never raised: a failed check marks
// the run, it does not abort it.
package audit

import (
	"fmt"

	"github.com/driftlab/trustdebt/internal/grading"
	"github.com/driftlab/trustdebt/internal/matrix"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// FindingSeverity ranks how bad a failed check is.
type FindingSeverity string

const (
	SeverityError   FindingSeverity = "error"
	SeverityWarning FindingSeverity = "warning"
)

// Status is the aggregate audit outcome.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Finding is one check's outcome.
type Finding struct {
	CheckName string          `json:"check_name"`
	Passed    bool            `json:"passed"`
	Message   string          `json:"message"`
	Severity  FindingSeverity `json:"severity"`
}

// Report is the Audit stage artifact.
type Report struct {
	Status   Status    `json:"status"`
	Findings []Finding `json:"findings"`
}

// Input carries everything the checks inspect. Stage names are plain
// strings so the pipeline can call the audit without a cycle.
type Input struct {
	ExpectedStages   []string
	CompletedStages  []string
	Categories       []taxonomy.Category
	Matrix           matrix.Matrix
	Grading          grading.Report
	OverallAlignment float64
}

// Run executes every check and aggregates the overall status: any failed
// error-severity check fails the run, failed warnings downgrade it.
func Run(in Input) Report {
	findings := []Finding{
		checkPipelineCompleteness(in.ExpectedStages, in.CompletedStages),
		checkScoreRange(in.Grading, in.OverallAlignment),
		checkCategoryOrdering(in.Categories),
		checkMatrixStructure(in.Matrix, len(in.Categories)),
		checkMatrixPopulation(in.Matrix),
	}

	status := StatusPass
	for _, f := range findings {
		if f.Passed {
			continue
		}
		if f.Severity == SeverityError {
			status = StatusFail
			break
		}
		status = StatusWarning
	}

	return Report{Status: status, Findings: findings}
}

// checkPipelineCompleteness verifies every expected stage completed,
// naming the first missing one.
func checkPipelineCompleteness(expected, completed []string) Finding {
	f := Finding{CheckName: "pipeline-completeness", Severity: SeverityError, Passed: true}

	done := make(map[string]bool, len(completed))
	for _, s := range completed {
		done[s] = true
	}
	for _, s := range expected {
		if !done[s] {
			f.Passed = false
			f.Message = fmt.Sprintf("stage %q did not complete", s)
			return f
		}
	}
	f.Message = fmt.Sprintf("all %d stages completed", len(expected))
	return f
}

// checkScoreRange verifies every category score, the sovereignty score,
// and the overall alignment score sit inside [0, 1].
func checkScoreRange(rep grading.Report, overallAlignment float64) Finding {
	f := Finding{CheckName: "score-range", Severity: SeverityError, Passed: true}

	for _, g := range rep.Categories {
		if g.Score < 0 || g.Score > 1 {
			f.Passed = false
			f.Message = fmt.Sprintf("category %s score %.4f out of [0, 1]", g.CategoryCode, g.Score)
			return f
		}
	}
	if s := rep.Sovereignty.Score; s < 0 || s > 1 {
		f.Passed = false
		f.Message = fmt.Sprintf("sovereignty score %.4f out of [0, 1]", s)
		return f
	}
	if overallAlignment < 0 || overallAlignment > 1 {
		f.Passed = false
		f.Message = fmt.Sprintf("overall alignment %.4f out of [0, 1]", overallAlignment)
		return f
	}
	f.Message = fmt.Sprintf("all %d category scores in range", len(rep.Categories))
	return f
}

// checkCategoryOrdering re-validates the canonical order of the final
// category set, independent of whatever normalization ran upstream.
func checkCategoryOrdering(cats []taxonomy.Category) Finding {
	f := Finding{CheckName: "category-ordering", Severity: SeverityError, Passed: true}

	if err := taxonomy.ValidateOrder(cats); err != nil {
		f.Passed = false
		f.Message = err.Error()
		return f
	}
	f.Message = fmt.Sprintf("%d categories in canonical order", len(cats))
	return f
}

// checkMatrixStructure verifies the grid is square over the full
// category set and non-degenerate.
func checkMatrixStructure(m matrix.Matrix, categoryCount int) Finding {
	f := Finding{CheckName: "matrix-structure", Severity: SeverityError, Passed: true}

	if m.Dimensions < 2 {
		f.Passed = false
		f.Message = fmt.Sprintf("degenerate matrix: %d dimension(s)", m.Dimensions)
		return f
	}
	if m.Dimensions != categoryCount {
		f.Passed = false
		f.Message = fmt.Sprintf("matrix dimensions %d do not match %d categories", m.Dimensions, categoryCount)
		return f
	}
	if want := m.Dimensions * m.Dimensions; len(m.Cells) != want {
		f.Passed = false
		f.Message = fmt.Sprintf("matrix has %d cells, want %d", len(m.Cells), want)
		return f
	}
	f.Message = fmt.Sprintf("%d×%d grid fully populated", m.Dimensions, m.Dimensions)
	return f
}

// checkMatrixPopulation flags an all-zero matrix. Structurally valid but
// it means no evidence flowed into the run.
func checkMatrixPopulation(m matrix.Matrix) Finding {
	f := Finding{CheckName: "matrix-population", Severity: SeverityWarning, Passed: true}

	if m.AllZero() {
		f.Passed = false
		f.Message = "matrix carries zero units in every cell"
		return f
	}
	f.Message = "matrix carries nonzero evidence"
	return f
}
