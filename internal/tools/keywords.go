package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/store"
)

// KeywordsTool handles the trustdebt_keywords MCP tool. It answers
// keyword- and category-scoped lookups from the indexed store.
type KeywordsTool struct {
	tracker *RunTracker
	store   *store.Store
}

// NewKeywordsTool creates a KeywordsTool. st may be nil; the tool then
// reports that the indexed store is disabled.
func NewKeywordsTool(tracker *RunTracker, st *store.Store) *KeywordsTool {
	return &KeywordsTool{tracker: tracker, store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *KeywordsTool) Definition() mcp.Tool {
	return mcp.NewTool("trustdebt_keywords",
		mcp.WithDescription(
			"Look up indexed keyword evidence for a run. Pass keyword to see "+
				"which categories it maps to and how often it occurred per "+
				"corpus, or category to see every keyword that contributed to "+
				"that category.",
		),
		withRunID(),
		mcp.WithString("keyword",
			mcp.Description("Keyword to look up."),
		),
		mcp.WithString("category",
			mcp.Description("Category code to look up (e.g. A.1)."),
		),
	)
}

// Handle processes the trustdebt_keywords tool call.
func (t *KeywordsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.store == nil {
		return mcp.NewToolResultError("the indexed store is disabled; keyword lookups are unavailable"), nil
	}

	runID, err := resolveRunID(req, t.tracker, t.store)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	keyword := strings.TrimSpace(req.GetString("keyword", ""))
	category := strings.TrimSpace(req.GetString("category", ""))
	if (keyword == "") == (category == "") {
		return mcp.NewToolResultError("pass exactly one of keyword or category"), nil
	}

	var (
		mappings []index.KeywordMapping
		title    string
	)
	if keyword != "" {
		mappings, err = t.store.MappingsByKeyword(runID, strings.ToLower(keyword))
		title = fmt.Sprintf("Keyword `%s`", strings.ToLower(keyword))
	} else {
		mappings, err = t.store.MappingsByCategory(runID, category)
		title = fmt.Sprintf("Category `%s`", category)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(mappings) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s has no indexed evidence in run `%s`.", title, runID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s — run `%s`\n\n", title, runID)
	b.WriteString("| Keyword | Category | Intent | Reality | Total |\n")
	b.WriteString("|---------|----------|--------|---------|-------|\n")
	for _, m := range mappings {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d |\n",
			m.Keyword, m.CategoryCode, m.IntentCount, m.RealityCount, m.TotalCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}
