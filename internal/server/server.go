// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it creates the concrete store, artifact
// store, and pipeline runner, and injects them into the tools, prompts,
// and resources. No analysis logic lives here.
package server

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/pipeline"
	"github.com/driftlab/trustdebt/internal/prompts"
	"github.com/driftlab/trustdebt/internal/resources"
	"github.com/driftlab/trustdebt/internal/store"
	"github.com/driftlab/trustdebt/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all tools, prompts, and resources
// registered.
//
// The returned cleanup function closes the indexed store and must be
// called on shutdown. It is always non-nil and safe to call even if
// store initialization failed.
func New(cfg config.EngineConfig) (*server.MCPServer, func(), error) {
	// Logs go to stderr: stdout belongs to the MCP stdio transport.
	logger := log.New(os.Stderr, "trustdebt: ", log.LstdFlags)

	s := server.NewMCPServer(
		"trustdebt",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// The indexed store is auxiliary: if it fails to open, analysis
	// still works from the JSON artifacts, so we log and continue.
	cleanup := noop
	var runStore pipeline.RunStore
	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		logger.Printf("WARNING: indexed store disabled: %v", err)
		st = nil
	} else {
		runStore = st
		cleanup = func() {
			if err := st.Close(); err != nil {
				logger.Printf("WARNING: store close: %v", err)
			}
		}
	}

	artifacts := pipeline.NewFileStore(cfg.DataDir)
	runner := pipeline.NewRunner(cfg, artifacts, runStore, logger)
	tracker := &tools.RunTracker{}

	// --- Register tools ---

	analyzeTool := tools.NewAnalyzeTool(runner, tracker)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	gradesTool := tools.NewGradesTool(artifacts, tracker, st)
	s.AddTool(gradesTool.Definition(), gradesTool.Handle)

	driftTool := tools.NewDriftTool(artifacts, tracker, st)
	s.AddTool(driftTool.Definition(), driftTool.Handle)

	auditTool := tools.NewAuditTool(artifacts, tracker, st)
	s.AddTool(auditTool.Definition(), auditTool.Handle)

	matrixTool := tools.NewMatrixTool(artifacts, tracker, st)
	s.AddTool(matrixTool.Definition(), matrixTool.Handle)

	keywordsTool := tools.NewKeywordsTool(tracker, st)
	s.AddTool(keywordsTool.Definition(), keywordsTool.Handle)

	// --- Register prompts ---

	analyzePrompt := prompts.NewAnalyzePrompt()
	s.AddPrompt(analyzePrompt.Definition(), analyzePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(st)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is the default cleanup when the store is disabled.
func noop() {}

// serverInstructions tells the host how to use the engine effectively.
func serverInstructions() string {
	return `You have access to trustdebt, a Trust Debt analysis MCP server.

## What is Trust Debt?

Trust Debt measures the gap between what a project SAYS it does (the
Intent corpus: docs, specs, READMEs) and what it ACTUALLY does (the
Reality corpus: source code, tests). Evidence is counted per category of
a hierarchical taxonomy and laid out on an asymmetric matrix: the upper
triangle is reality-weighted, the lower triangle intent-weighted.

## Workflow

1. Call trustdebt_analyze with intent_dir and reality_dir.
   The full pipeline runs: taxonomy normalization, keyword indexing,
   matrix construction, distribution statistics, grading, drift
   analysis, and a final audit. Artifacts are written per stage.
2. Call trustdebt_grades to see per-category scores and the aggregate
   sovereignty score.
3. Call trustdebt_drift to see which categories are promised but
   under-delivered (positive drift) or built but under-documented
   (negative drift), with concrete recommendations.
4. Call trustdebt_matrix to inspect the evidence matrix statistics and
   individual rows.
5. Call trustdebt_audit to see the validation verdict; a "fail" means
   the run itself is not trustworthy and its numbers should not be
   quoted.
6. Call trustdebt_keywords to trace a grade back to the keywords that
   produced it.

## Reading the results

- Grades run A+ down to F in 0.05 score bands. F means no credible
  evidence, not necessarily bad code.
- Drift severity: aligned < 0.10, minor < 0.25, significant < 0.50,
  critical otherwise.
- Always check the audit verdict before presenting numbers to the user.
- Identical corpora always produce identical artifacts: if two runs
  disagree, the inputs changed.

## Important

- The engine counts whole-word, case-insensitive keyword matches. It
  does not understand semantics: treat results as evidence, not proof.
- Tools that read a run default to the most recent one; pass run_id to
  compare older runs.`
}
