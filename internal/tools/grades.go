package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/grading"
	"github.com/driftlab/trustdebt/internal/pipeline"
	"github.com/driftlab/trustdebt/internal/store"
)

// GradesTool handles the trustdebt_grades MCP tool. It reads a run's
// grading artifact back and renders the category grade table.
type GradesTool struct {
	artifacts pipeline.ArtifactStore
	tracker   *RunTracker
	store     *store.Store
}

// NewGradesTool creates a GradesTool. st may be nil.
func NewGradesTool(artifacts pipeline.ArtifactStore, tracker *RunTracker, st *store.Store) *GradesTool {
	return &GradesTool{artifacts: artifacts, tracker: tracker, store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *GradesTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_grades",
		mcp.WithDescription(
			"Show per-category grades for a run: composite score, letter "+
				"grade, percentile, and evidence figures, plus the aggregate "+
				"sovereignty score.",
		),
		withRunID(),
		mcp.WithNumber("limit",
			mcp.Description("Maximum categories to list, strongest first. Default 15, 0 = all."),
		),
	)
}

// Handle processes the trustdebt_grades tool call.
func (t *GradesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := resolveRunID(req, t.tracker, t.store)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rep grading.Report
	if err := t.artifacts.Load(runID, pipeline.StageGrading, &rep); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("grading artifact for run %s: %v", runID, err)), nil
	}

	limit := req.GetInt("limit", 15)

	// Strongest first; the artifact is in taxonomy order.
	ranked := make([]grading.CategoryGrade, len(rep.Categories))
	copy(ranked, rep.Categories)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CategoryCode < ranked[j].CategoryCode
	})
	shown := len(ranked)
	if limit > 0 && limit < shown {
		shown = limit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Category Grades — run `%s`\n\n", runID)
	fmt.Fprintf(&b, "**Sovereignty:** %.3f (grade %s)\n%s\n\n",
		rep.Sovereignty.Score, rep.Sovereignty.Grade, rep.Sovereignty.Interpretation)

	b.WriteString("| Category | Score | Grade | Percentile | Strength | Docs | % of corpus |\n")
	b.WriteString("|----------|-------|-------|------------|----------|------|-------------|\n")
	for _, g := range ranked[:shown] {
		fmt.Fprintf(&b, "| %s | %.3f | %s | %.0f | %d | %d | %.1f%% |\n",
			g.CategoryCode, g.Score, g.LetterGrade, g.Percentile,
			g.TotalStrength, g.DocumentCount, g.PercentOfCorpus)
	}
	if shown < len(ranked) {
		fmt.Fprintf(&b, "\nShowing %d of %d categories.\n", shown, len(ranked))
	}

	return mcp.NewToolResultText(b.String()), nil
}
