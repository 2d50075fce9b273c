// Package resources implements the MCP resource handlers.
//
// Resources expose read-only run state under trustdebt:// URIs so hosts
// can pull context without invoking a tool.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/store"
)

// Handler manages the trustdebt resource endpoints.
type Handler struct {
	store *store.Store // nil when the indexed store is disabled
}

// NewHandler creates a resource Handler. st may be nil.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// StatusResource returns the MCP resource definition for run status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"trustdebt://run/status",
		"Trust Debt Run Status",
		mcp.WithResourceDescription("Most recent analysis runs: status, sovereignty, and alignment."),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the recent run summaries as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.store == nil {
		return errorResource(req.Params.URI, "the indexed store is disabled; run status is unavailable"), nil
	}

	runs, err := h.store.Runs(10)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	payload := struct {
		Runs []store.Run `json:"runs"`
	}{Runs: runs}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling run status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource carrying an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
