package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/audit"
	"github.com/driftlab/trustdebt/internal/pipeline"
	"github.com/driftlab/trustdebt/internal/store"
)

// AuditTool handles the trustdebt_audit MCP tool. It reads a run's
// audit artifact back: the verdict and every check's finding.
type AuditTool struct {
	artifacts pipeline.ArtifactStore
	tracker   *RunTracker
	store     *store.Store
}

// NewAuditTool creates an AuditTool. st may be nil.
func NewAuditTool(artifacts pipeline.ArtifactStore, tracker *RunTracker, st *store.Store) *AuditTool {
	return &AuditTool{artifacts: artifacts, tracker: tracker, store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *AuditTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_audit",
		mcp.WithDescription(
			"Show the audit verdict for a run: pipeline completeness, score "+
				"ranges, category ordering, and matrix structure/population "+
				"checks with their findings.",
		),
		withRunID(),
	)
}

// Handle processes the trustdebt_audit tool call.
func (t *AuditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := resolveRunID(req, t.tracker, t.store)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rep audit.Report
	if err := t.artifacts.Load(runID, pipeline.StageAudit, &rep); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit artifact for run %s: %v", runID, err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Audit — run `%s`\n\n", runID)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", rep.Status)

	b.WriteString("| Check | Result | Severity | Message |\n")
	b.WriteString("|-------|--------|----------|--------|\n")
	for _, f := range rep.Findings {
		result := "pass"
		if !f.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.CheckName, result, f.Severity, f.Message)
	}

	return mcp.NewToolResultText(b.String()), nil
}
