package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/alignment"
	"github.com/driftlab/trustdebt/internal/pipeline"
	"github.com/driftlab/trustdebt/internal/store"
)

// DriftTool handles the trustdebt_drift MCP tool. It reads a run's
// alignment artifact back: per-category drift, severity counts, and
// recommendations.
type DriftTool struct {
	artifacts pipeline.ArtifactStore
	tracker   *RunTracker
	store     *store.Store
}

// NewDriftTool creates a DriftTool. st may be nil.
func NewDriftTool(artifacts pipeline.ArtifactStore, tracker *RunTracker, st *store.Store) *DriftTool {
	return &DriftTool{artifacts: artifacts, tracker: tracker, store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *DriftTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_drift",
		mcp.WithDescription(
			"Show intent/reality drift for a run. Positive drift means a "+
				"category is promised but under-delivered; negative means it is "+
				"built but under-documented. Includes severity counts and the "+
				"top recommendations.",
		),
		withRunID(),
		mcp.WithString("severity",
			mcp.Description("Only list categories at this severity (aligned, minor, significant, critical)."),
			mcp.Enum("aligned", "minor", "significant", "critical"),
		),
	)
}

// Handle processes the trustdebt_drift tool call.
func (t *DriftTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := resolveRunID(req, t.tracker, t.store)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rep alignment.Report
	if err := t.artifacts.Load(runID, pipeline.StageAlignment, &rep); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alignment artifact for run %s: %v", runID, err)), nil
	}

	filter := alignment.Severity(req.GetString("severity", ""))
	if filter != "" {
		if err := alignment.ValidateSeverity(filter); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Drift Report — run `%s`\n\n", runID)
	fmt.Fprintf(&b, "**Overall alignment:** %.3f\n\n", rep.OverallAlignment)

	b.WriteString("**Severity counts:** ")
	for i, s := range []alignment.Severity{
		alignment.SeverityAligned, alignment.SeverityMinor,
		alignment.SeveritySignificant, alignment.SeverityCritical,
	} {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %d", s, rep.SeverityCounts[s])
	}
	b.WriteString("\n\n")

	b.WriteString("| Category | Intent | Reality | Drift | Severity |\n")
	b.WriteString("|----------|--------|---------|-------|----------|\n")
	listed := 0
	for _, d := range rep.Categories {
		if filter != "" && d.Severity != filter {
			continue
		}
		fmt.Fprintf(&b, "| %s | %.3f | %.3f | %+.3f | %s |\n",
			d.CategoryCode, d.IntentScore, d.RealityScore, d.Drift, d.Severity)
		listed++
	}
	if listed == 0 {
		b.WriteString("| — | — | — | — | — |\n")
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for i, r := range rep.Recommendations {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, r.Severity, r.Action)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
