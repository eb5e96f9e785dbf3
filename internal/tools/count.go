package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/engine"
)

// Counter computes product-space metadata.
type Counter interface {
	Metadata(ctx context.Context, req engine.MetadataRequest) (cartesian.Metadata, error)
}

// CountTool handles the cartesian_count MCP tool.
type CountTool struct {
	engine Counter
}

// NewCountTool creates a CountTool.
func NewCountTool(e Counter) *CountTool {
	return &CountTool{engine: e}
}

// Definition returns the MCP tool definition for cartesian_count.
func (t *CountTool) Definition() mcp.Tool {
	return mcp.NewTool("cartesian_count",
		mcp.WithDescription(
			"Count the combinations of a spintax template crossed with a set of locations, "+
				"without generating or storing anything. Give a template, a campaign, or both.",
		),
		mcp.WithString("template",
			mcp.Description("Spintax template, e.g. '{Best|Top} {niche} in {city}'. Defaults to the campaign's headline template"),
		),
		mcp.WithString("campaign_id",
			mcp.Description("Campaign whose template and location mode apply"),
		),
		mcp.WithString("location_mode",
			mcp.Description("Location table to cross with: none, state, county, city"),
			mcp.Enum("none", "state", "county", "city"),
		),
		mcp.WithString("location_target",
			mcp.Description("State or county id narrowing the locations"),
		),
		mcp.WithNumber("max_combinations",
			mcp.Description("Window size used for generatedCount and wasTruncated (default 10000)"),
		),
	)
}

// Handle processes the cartesian_count tool call.
func (t *CountTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meta, err := t.engine.Metadata(ctx, engine.MetadataRequest{
		CampaignID:      req.GetString("campaign_id", ""),
		Template:        req.GetString("template", ""),
		LocationMode:    engine.LocationMode(req.GetString("location_mode", "")),
		LocationTarget:  req.GetString("location_target", ""),
		MaxCombinations: int64Arg(req, "max_combinations", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("count failed: %v", err)), nil
	}
	return jsonResult(meta)
}
