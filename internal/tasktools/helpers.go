// Package tasktools provides MCP tool handlers over the task store.
//
// Each tool handler follows the same pattern:
// - A struct with the tasks.Store injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() maps arguments to a request, calls the store and renders the result
//
// Store failures are returned as tool errors carrying the store's message,
// never as a Go error, so the agent always sees a readable reason.
package tasktools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/taskstore/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// stringSliceArg extracts a list of strings. JSON arrays arrive as
// []interface{}; a single comma-separated string is accepted too.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	var out []string
	switch v := req.GetArguments()[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

// optionalString reports whether key was sent as a string at all.
func optionalString(req mcp.CallToolRequest, key string) (string, bool) {
	v, ok := req.GetArguments()[key].(string)
	return v, ok
}

// dateArg parses an RFC 3339 timestamp or a plain YYYY-MM-DD date (UTC).
func dateArg(req mcp.CallToolRequest, key string) (*time.Time, error) {
	raw := strings.TrimSpace(req.GetString(key, ""))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("'%s' must be an ISO-8601 date or timestamp, got %q", key, raw)
}

// render returns the store result as indented JSON, or a tool error with the
// store's message when the operation failed.
func render(outcome tasks.Outcome, result any) (*mcp.CallToolResult, error) {
	if !outcome.Success {
		return mcp.NewToolResultError(outcome.Message), nil
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
