package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// Generator enumerates and persists a campaign slice.
type Generator interface {
	Generate(ctx context.Context, req engine.GenerateRequest) (engine.GenerateResponse, error)
}

// GenerateTool handles the cartesian_generate MCP tool.
type GenerateTool struct {
	engine Generator
}

// NewGenerateTool creates a GenerateTool.
func NewGenerateTool(e Generator) *GenerateTool {
	return &GenerateTool{engine: e}
}

// Definition returns the MCP tool definition for cartesian_generate.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("cartesian_generate",
		mcp.WithDescription(
			"Enumerate a slice of a campaign's locations x spintax space and store every new headline "+
				"in the campaign's inventory. Texts the campaign already has are skipped. "+
				"Call again with nextOffset until done is true.",
		),
		mcp.WithString("campaign_id",
			mcp.Required(),
			mcp.Description("Campaign to generate for"),
		),
		mcp.WithString("template",
			mcp.Description("Override the campaign's headline template"),
		),
		mcp.WithString("location_mode",
			mcp.Description("Override the campaign's location mode: none, state, county, city"),
			mcp.Enum("none", "state", "county", "city"),
		),
		mcp.WithString("location_target",
			mcp.Description("Override the campaign's location target"),
		),
		mcp.WithObject("niche_variables",
			mcp.Description("Placeholder values such as {\"niche\": \"roofer\"}. Defaults to the campaign's"),
		),
		mcp.WithNumber("max_combinations",
			mcp.Description("Slice size (default 10000)"),
		),
		mcp.WithNumber("batch_size",
			mcp.Description("Rows per insert batch (default 500)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Global index to start from (default 0)"),
		),
	)
}

// Handle processes the cartesian_generate tool call.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	campaignID := req.GetString("campaign_id", "")
	if campaignID == "" {
		return mcp.NewToolResultError("'campaign_id' is required"), nil
	}

	resp, err := t.engine.Generate(ctx, engine.GenerateRequest{
		CampaignID:      campaignID,
		Template:        req.GetString("template", ""),
		LocationMode:    engine.LocationMode(req.GetString("location_mode", "")),
		LocationTarget:  req.GetString("location_target", ""),
		NicheVariables:  varsArg(req, "niche_variables"),
		MaxCombinations: int64Arg(req, "max_combinations", 0),
		BatchSize:       intArg(req, "batch_size", 0),
		Offset:          int64Arg(req, "offset", 0),
	})
	if err != nil {
		if resp.Results.Processed > 0 {
			return mcp.NewToolResultError(fmt.Sprintf(
				"generation stopped after %d candidates (%d inserted, resume at offset %d): %v",
				resp.Results.Processed, resp.Results.Inserted, resp.NextOffset, err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}
	return jsonResult(resp)
}
