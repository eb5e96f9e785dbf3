// Package tools implements the spinforge MCP tool handlers.
//
// Each tool is a struct holding its dependencies behind a small interface,
// with Definition() returning the mcp.Tool schema and Handle() processing
// a call. Domain failures come back as tool errors, never protocol errors.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/spintax"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func int64Arg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// varsArg reads an object argument of string values. Non-string values
// are formatted with %v.
func varsArg(req mcp.CallToolRequest, key string) spintax.Variables {
	raw, ok := req.GetArguments()[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	vars := make(spintax.Variables, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			vars[k] = s
			continue
		}
		vars[k] = fmt.Sprint(v)
	}
	return vars
}

// jsonResult returns v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
