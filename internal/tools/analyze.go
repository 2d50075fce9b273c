package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/pipeline"
)

// AnalyzeTool handles the trustdebt_analyze MCP tool. It runs the full
// seven-stage pipeline over two corpus directories.
type AnalyzeTool struct {
	runner  *pipeline.Runner
	tracker *RunTracker
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(runner *pipeline.Runner, tracker *RunTracker) *AnalyzeTool {
	return &AnalyzeTool{runner: runner, tracker: tracker}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_analyze",
		mcp.WithDescription(
			"Run a full Trust Debt analysis. Indexes the Intent corpus "+
				"(documentation, specs, promises) and the Reality corpus "+
				"(code, tests, behavior) against the category taxonomy, builds "+
				"the asymmetric evidence matrix, and reports grades, drift, "+
				"and the audit verdict.",
		),
		mcp.WithString("intent_dir",
			mcp.Required(),
			mcp.Description("Directory holding the Intent corpus (docs, specs, READMEs)."),
		),
		mcp.WithString("reality_dir",
			mcp.Required(),
			mcp.Description("Directory holding the Reality corpus (source code, tests)."),
		),
	)
}

// Handle processes the trustdebt_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intentDir, err := req.RequireString("intent_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	realityDir, err := req.RequireString("reality_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	intent, err := index.LoadDir(intentDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading intent corpus: %v", err)), nil
	}
	reality, err := index.LoadDir(realityDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading reality corpus: %v", err)), nil
	}

	report, err := t.runner.Run(ctx, intent, reality)
	if err != nil {
		return nil, fmt.Errorf("running analysis: %w", err)
	}
	t.tracker.Set(report.RunID)

	return mcp.NewToolResultText(renderRunReport(report, intent.Size(), reality.Size())), nil
}

func renderRunReport(report pipeline.RunReport, intentDocs, realityDocs int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trust Debt Analysis\n\n")
	fmt.Fprintf(&b, "**Run:** `%s`\n", report.RunID)
	fmt.Fprintf(&b, "**Corpora:** %d intent documents, %d reality documents\n", intentDocs, realityDocs)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", report.Status())

	b.WriteString("## Stages\n\n")
	b.WriteString("| Stage | Outcome | Detail |\n")
	b.WriteString("|-------|---------|--------|\n")
	for _, res := range report.Results {
		detail := "—"
		switch {
		case res.Err != "":
			detail = res.Err
		case res.ArtifactPath != "":
			detail = fmt.Sprintf("`%s`", res.ArtifactPath)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", res.Stage, res.Outcome, detail)
	}

	fmt.Fprintf(&b, "\n## Summary\n\n")
	fmt.Fprintf(&b, "- Sovereignty: **%.3f** (grade %s) — %s\n",
		report.Sovereignty.Score, report.Sovereignty.Grade, report.Sovereignty.Interpretation)
	fmt.Fprintf(&b, "- Overall alignment: **%.3f**\n", report.OverallAlignment)
	fmt.Fprintf(&b, "- Audit: %s (%d findings)\n", report.Audit.Status, len(report.Audit.Findings))

	b.WriteString("\nUse trustdebt_grades, trustdebt_drift, trustdebt_matrix, or trustdebt_audit to inspect this run.\n")
	return b.String()
}
