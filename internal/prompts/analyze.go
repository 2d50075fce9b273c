// Package prompts implements the MCP prompt handlers.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzePrompt handles the trustdebt-analyze MCP prompt. It walks the
// host through a full analysis and how to read the results.
type AnalyzePrompt struct{}

// NewAnalyzePrompt creates an AnalyzePrompt.
func NewAnalyzePrompt() *AnalyzePrompt {
	return &AnalyzePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AnalyzePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("trustdebt-analyze",
		mcp.WithPromptDescription(
			"Run a Trust Debt analysis on this project and walk through "+
				"the grades, drift, and audit results.",
		),
		mcp.WithArgument("intent_dir",
			mcp.ArgumentDescription("Directory with documentation and specs. Defaults to docs/."),
		),
		mcp.WithArgument("reality_dir",
			mcp.ArgumentDescription("Directory with source code and tests. Defaults to the repository root."),
		),
	)
}

// Handle processes the trustdebt-analyze prompt request.
func (p *AnalyzePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	intentDir := req.Params.Arguments["intent_dir"]
	if intentDir == "" {
		intentDir = "docs/"
	}
	realityDir := req.Params.Arguments["reality_dir"]
	if realityDir == "" {
		realityDir = "."
	}

	return &mcp.GetPromptResult{
		Description: "Trust Debt Analysis",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `trustdebt_analyze` with intent_dir=\"" + intentDir +
						"\" and reality_dir=\"" + realityDir + "\".\n\n" +
						"Then:\n" +
						"1. Summarize the sovereignty score and what the grade means\n" +
						"2. Call `trustdebt_drift` and highlight the worst-drifting categories\n" +
						"3. Call `trustdebt_audit` and flag any failed checks\n" +
						"4. Recommend the 3 most impactful corrections, citing the drift direction\n" +
						"   (promised-but-undelivered vs built-but-undocumented) for each",
				),
			},
		},
	}, nil
}
