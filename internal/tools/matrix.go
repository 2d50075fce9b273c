package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/matrix"
	"github.com/driftlab/trustdebt/internal/pipeline"
	"github.com/driftlab/trustdebt/internal/store"
)

// MatrixTool handles the trustdebt_matrix MCP tool. It reads a run's
// evidence matrix back: triangle statistics, block boundaries, and
// optionally one full row.
type MatrixTool struct {
	artifacts pipeline.ArtifactStore
	tracker   *RunTracker
	store     *store.Store
}

// NewMatrixTool creates a MatrixTool. st may be nil.
func NewMatrixTool(artifacts pipeline.ArtifactStore, tracker *RunTracker, st *store.Store) *MatrixTool {
	return &MatrixTool{artifacts: artifacts, tracker: tracker, store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *MatrixTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_matrix",
		mcp.WithDescription(
			"Show the asymmetric evidence matrix for a run: dimensions, "+
				"triangle unit totals, the asymmetry ratio against its target, "+
				"and root block boundaries. Pass row to dump one matrix row.",
		),
		withRunID(),
		mcp.WithNumber("row",
			mcp.Description("1-indexed row to dump cell by cell."),
		),
	)
}

// Handle processes the trustdebt_matrix tool call.
func (t *MatrixTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := resolveRunID(req, t.tracker, t.store)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var m matrix.Matrix
	if err := t.artifacts.Load(runID, pipeline.StageMatrix, &m); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matrix artifact for run %s: %v", runID, err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Evidence Matrix — run `%s`\n\n", runID)
	fmt.Fprintf(&b, "**Dimensions:** %d×%d (%d cells)\n\n", m.Dimensions, m.Dimensions, len(m.Cells))

	s := m.Statistics
	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- Grand total: %.2f units\n", s.GrandTotalUnits)
	fmt.Fprintf(&b, "- Upper triangle (reality-weighted): %.2f units\n", s.UpperUnits)
	fmt.Fprintf(&b, "- Lower triangle (intent-weighted): %.2f units\n", s.LowerUnits)
	fmt.Fprintf(&b, "- Diagonal: %.2f units\n", s.DiagonalUnits)
	check := "FAILED"
	if s.AsymmetryOK {
		check = "ok"
	}
	fmt.Fprintf(&b, "- Asymmetry ratio: %.3f (target %.2f, error %.4f, check %s)\n",
		s.AsymmetryRatio, s.TargetAsymmetryRatio, s.AsymmetryError, check)

	b.WriteString("\n## Blocks\n\n")
	b.WriteString("| Root | Rows |\n|------|------|\n")
	for _, blk := range m.Blocks {
		fmt.Fprintf(&b, "| %s | %d–%d |\n", blk.RootCode, blk.Start, blk.End)
	}

	if row := req.GetInt("row", 0); row > 0 {
		cells, err := t.rowCells(runID, row, m)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fmt.Fprintf(&b, "\n## Row %d\n\n", row)
		b.WriteString("| Col | Category | Intent | Reality | Units | Triangle |\n")
		b.WriteString("|-----|----------|--------|---------|-------|----------|\n")
		for _, c := range cells {
			fmt.Fprintf(&b, "| %d | %s | %.3f | %.3f | %.3f | %s |\n",
				c.Col, c.ColCode, c.IntentValue, c.RealityValue, c.Units, c.Triangle)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// rowCells prefers the indexed store and falls back to the artifact.
func (t *MatrixTool) rowCells(runID string, row int, m matrix.Matrix) ([]matrix.Cell, error) {
	if t.store != nil {
		cells, err := t.store.CellsForRow(runID, row)
		if err == nil && len(cells) > 0 {
			return cells, nil
		}
	}

	if row > m.Dimensions {
		return nil, fmt.Errorf("row %d out of range (matrix is %d×%d)", row, m.Dimensions, m.Dimensions)
	}
	cells := make([]matrix.Cell, 0, m.Dimensions)
	for col := 1; col <= m.Dimensions; col++ {
		c, ok := m.CellAt(row, col)
		if !ok {
			return nil, fmt.Errorf("cell (%d,%d) missing from artifact", row, col)
		}
		cells = append(cells, c)
	}
	return cells, nil
}
