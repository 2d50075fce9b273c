// Package tools implements the MCP tool handlers for the Trust Debt
// engine.
//
// Each tool is a struct that receives its dependencies at construction
// and exposes Definition/Handle for registration. Tools never compute
// analysis results themselves: they run the pipeline or read back its
// artifacts.
package tools

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/store"
)

// RunTracker remembers the most recent run ID so follow-up tools can
// default to it without the caller repeating it.
type RunTracker struct {
	mu     sync.Mutex
	lastID string
}

// Set records the most recent run.
func (t *RunTracker) Set(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastID = runID
}

// Last returns the most recent run ID, or "".
func (t *RunTracker) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastID
}

// resolveRunID picks the run a tool should read: the explicit run_id
// argument, then the tracker's last run, then the newest run in the
// store.
func resolveRunID(req mcp.CallToolRequest, tracker *RunTracker, st *store.Store) (string, error) {
	if id := req.GetString("run_id", ""); id != "" {
		return id, nil
	}
	if tracker != nil {
		if id := tracker.Last(); id != "" {
			return id, nil
		}
	}
	if st != nil {
		runs, err := st.Runs(1)
		if err == nil && len(runs) > 0 {
			return runs[0].ID, nil
		}
	}
	return "", fmt.Errorf("no run available: pass run_id or run trustdebt_analyze first")
}

// withRunID is the shared run_id parameter used by every read-back tool.
func withRunID() mcp.ToolOption {
	return mcp.WithString("run_id",
		mcp.Description("Run to inspect. Defaults to the most recent run."),
	)
}
