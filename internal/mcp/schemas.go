package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// categoryNames lists the category enumeration for schema purposes
func categoryNames() []string {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}
	return names
}

// addEntryTool returns the tool definition for kb_add_entry
func addEntryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "kb_add_entry",
		Description: "Add a new entry to the mainframe knowledge base",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short title describing the problem",
				},
				"problem": map[string]interface{}{
					"type":        "string",
					"description": "Full problem description (symptoms, error codes, context)",
				},
				"solution": map[string]interface{}{
					"type":        "string",
					"description": "Resolution steps",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Mainframe subsystem the entry belongs to",
					"enum":        categoryNames(),
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Keywords for exact tag matching (e.g. abend codes)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"title", "category"},
		},
	}
}

// searchTool returns the tool definition for kb_search
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "kb_search",
		Description: "Search the knowledge base with relevance-ranked results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (keywords, error codes, or natural language)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (0 = unbounded)",
					"default":     10,
					"minimum":     0,
					"maximum":     100,
				},
				"use_ai": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, augment lexical matching with the AI semantic bridge",
					"default":     false,
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum relevance score (0-100; values <= 1.0 are treated as fractions)",
					"default":     30,
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one category",
					"enum":        categoryNames(),
				},
				"sort_by": map[string]interface{}{
					"type":        "string",
					"description": "Result ordering",
					"enum":        []string{"relevance", "usage", "recency"},
					"default":     "relevance",
				},
				"include_highlights": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include matched-term spans per result",
					"default":     false,
				},
				"include_explanations": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include explanations for AI-derived matches",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// recordUsageTool returns the tool definition for kb_record_usage
func recordUsageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "kb_record_usage",
		Description: "Record that a knowledge-base entry was applied, and whether it resolved the problem",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entry_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the entry that was used",
				},
				"success": map[string]interface{}{
					"type":        "boolean",
					"description": "True if the entry's solution resolved the problem",
				},
			},
			Required: []string{"entry_id", "success"},
		},
	}
}

// statusTool returns the tool definition for kb_status
func statusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "kb_status",
		Description: "Report knowledge-base size and per-category entry counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
