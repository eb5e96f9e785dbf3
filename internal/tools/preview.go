package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// Previewer samples random resolutions of a template.
type Previewer interface {
	Preview(ctx context.Context, req engine.PreviewRequest) (engine.PreviewResponse, error)
}

// PreviewTool handles the cartesian_preview MCP tool.
type PreviewTool struct {
	engine Previewer
}

// NewPreviewTool creates a PreviewTool.
func NewPreviewTool(e Previewer) *PreviewTool {
	return &PreviewTool{engine: e}
}

// Definition returns the MCP tool definition for cartesian_preview.
func (t *PreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("cartesian_preview",
		mcp.WithDescription(
			"Show random sample resolutions of a spintax template together with its combination counts. "+
				"Samples may repeat. Nothing is written.",
		),
		mcp.WithString("template",
			mcp.Description("Spintax template. Defaults to the campaign's headline template"),
		),
		mcp.WithString("campaign_id",
			mcp.Description("Campaign to preview"),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of samples (default 5)"),
		),
	)
}

// Handle processes the cartesian_preview tool call.
func (t *PreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := t.engine.Preview(ctx, engine.PreviewRequest{
		CampaignID:   req.GetString("campaign_id", ""),
		Template:     req.GetString("template", ""),
		PreviewCount: intArg(req, "count", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}
	return jsonResult(resp)
}
