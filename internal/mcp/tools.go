package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/kbsearch-mcp/internal/store"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeEntryNotFound   = -32001 // Referenced entry does not exist
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
	ErrorCodeInvalidCategory = -32005 // Category outside the enumeration
)

// handleAddEntry handles the kb_add_entry tool invocation
func (s *Server) handleAddEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "title parameter is required", map[string]interface{}{
			"param":  "title",
			"reason": "missing or empty",
		})
	}

	categoryStr, ok := args["category"].(string)
	if !ok || categoryStr == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "category parameter is required", map[string]interface{}{
			"param":  "category",
			"reason": "missing or empty",
		})
	}
	category := types.Category(categoryStr)
	if !category.Valid() {
		return nil, newMCPError(ErrorCodeInvalidCategory, "invalid category", map[string]interface{}{
			"param":   "category",
			"value":   categoryStr,
			"allowed": categoryNames(),
		})
	}

	entry := &types.KBEntry{
		Title:    title,
		Problem:  getStringDefault(args, "problem", ""),
		Solution: getStringDefault(args, "solution", ""),
		Category: category,
		Tags:     getStringSlice(args, "tags"),
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create entry", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.engine.InvalidateCache()

	response := map[string]interface{}{
		"created":    true,
		"entry_id":   entry.ID,
		"category":   string(entry.Category),
		"created_at": entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearch handles the kb_search tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 0 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 0 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	opts := types.SearchOptions{
		Limit:               limit,
		UseAI:               getBoolDefault(args, "use_ai", false),
		Threshold:           getFloatDefault(args, "threshold", 30),
		SortBy:              types.SortOrder(getStringDefault(args, "sort_by", "relevance")),
		IncludeHighlights:   getBoolDefault(args, "include_highlights", false),
		IncludeExplanations: getBoolDefault(args, "include_explanations", false),
	}
	if categoryStr := getStringDefault(args, "category", ""); categoryStr != "" {
		category := types.Category(categoryStr)
		if !category.Valid() {
			return nil, newMCPError(ErrorCodeInvalidCategory, "invalid category", map[string]interface{}{
				"param":   "category",
				"value":   categoryStr,
				"allowed": categoryNames(),
			})
		}
		opts.Category = category
	}
	if err := opts.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search options", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load entries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results, err := s.engine.Search(ctx, query, entries, opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": formatResults(results, opts),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRecordUsage handles the kb_record_usage tool invocation
func (s *Server) handleRecordUsage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	entryID, ok := args["entry_id"].(string)
	if !ok || entryID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "entry_id parameter is required", map[string]interface{}{
			"param":  "entry_id",
			"reason": "missing or empty",
		})
	}
	success, ok := args["success"].(bool)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "success parameter is required", map[string]interface{}{
			"param":  "success",
			"reason": "missing or not a boolean",
		})
	}

	if err := s.store.RecordUsage(ctx, entryID, success); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newMCPError(ErrorCodeEntryNotFound, "entry not found", map[string]interface{}{
				"entry_id": entryID,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to record usage", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.engine.InvalidateCache()

	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to reload entry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"recorded":      true,
		"entry_id":      entryID,
		"usage_count":   entry.UsageCount,
		"success_count": entry.SuccessCount,
		"failure_count": entry.FailureCount,
		"success_rate":  fmt.Sprintf("%.2f", entry.SuccessRate()),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleStatus handles the kb_status tool invocation
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, err := s.store.CountEntries(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count entries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	byCategory := make(map[string]interface{}, len(types.Categories))
	for _, c := range types.Categories {
		entries, err := s.store.ListEntriesByCategory(ctx, c)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list entries", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if len(entries) > 0 {
			byCategory[string(c)] = len(entries)
		}
	}

	response := map[string]interface{}{
		"server":        ServerName,
		"version":       ServerVersion,
		"total_entries": total,
		"by_category":   byCategory,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// formatResults converts search results to the wire representation
func formatResults(results []types.SearchResult, opts types.SearchOptions) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		item := map[string]interface{}{
			"entry_id":   r.Entry.ID,
			"title":      r.Entry.Title,
			"problem":    r.Entry.Problem,
			"solution":   r.Entry.Solution,
			"category":   string(r.Entry.Category),
			"tags":       r.Entry.Tags,
			"score":      fmt.Sprintf("%.1f", r.Score),
			"match_type": string(r.MatchType),
		}
		if opts.IncludeHighlights && len(r.Highlights) > 0 {
			highlights := make([]map[string]interface{}, len(r.Highlights))
			for i, h := range r.Highlights {
				highlights[i] = map[string]interface{}{
					"field": h.Field,
					"start": h.Start,
					"end":   h.End,
					"text":  h.Text,
				}
			}
			item["highlights"] = highlights
		}
		if opts.IncludeExplanations && r.Explanation != "" {
			item["explanation"] = r.Explanation
		}
		out = append(out, item)
	}
	return out
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a numeric parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string-array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
