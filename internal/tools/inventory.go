package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// Inventory reads a campaign's headline inventory.
type Inventory interface {
	ListHeadlines(ctx context.Context, campaignID string, status engine.HeadlineStatus, limit int) ([]engine.Headline, error)
	CountHeadlines(ctx context.Context, campaignID string, status engine.HeadlineStatus) (int, error)
}

var validStatuses = map[engine.HeadlineStatus]bool{
	"":                       true,
	engine.HeadlineAvailable: true,
	engine.HeadlineUsed:      true,
}

// InventoryTool handles the inventory_list MCP tool.
type InventoryTool struct {
	store Inventory
}

// NewInventoryTool creates an InventoryTool.
func NewInventoryTool(store Inventory) *InventoryTool {
	return &InventoryTool{store: store}
}

// Definition returns the MCP tool definition for inventory_list.
func (t *InventoryTool) Definition() mcp.Tool {
	return mcp.NewTool("inventory_list",
		mcp.WithDescription("List the stored headlines of a campaign, oldest first."),
		mcp.WithString("campaign_id",
			mcp.Required(),
			mcp.Description("Campaign whose inventory to list"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by status: available or used (default all)"),
			mcp.Enum("available", "used"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max rows (default 50, max 500)"),
		),
	)
}

// Handle processes the inventory_list tool call.
func (t *InventoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	campaignID := req.GetString("campaign_id", "")
	if campaignID == "" {
		return mcp.NewToolResultError("'campaign_id' is required"), nil
	}
	status := engine.HeadlineStatus(req.GetString("status", ""))
	if !validStatuses[status] {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q: must be one of: available, used", status)), nil
	}
	limit := min(intArg(req, "limit", 50), 500)

	rows, err := t.store.ListHeadlines(ctx, campaignID, status, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing inventory failed: %v", err)), nil
	}
	available, err := t.store.CountHeadlines(ctx, campaignID, engine.HeadlineAvailable)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting inventory failed: %v", err)), nil
	}
	total, err := t.store.CountHeadlines(ctx, campaignID, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting inventory failed: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No headlines found for campaign %s (%d total).", campaignID, total)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaign %s: %d headlines, %d available, %d used. Showing %d:\n\n",
		campaignID, total, available, total-available, len(rows))
	for i, h := range rows {
		where := ""
		if h.LocationData != nil {
			where = " @ " + strings.Trim(h.LocationData.City+", "+h.LocationData.StateCode, ", ")
		}
		used := ""
		if h.Status == engine.HeadlineUsed && h.UsedOnArticle != "" {
			used = " -> " + h.UsedOnArticle
		}
		fmt.Fprintf(&b, "[%d] (%s) %s%s%s\n", i+1, h.Status, h.FinalTitleText, where, used)
	}
	return mcp.NewToolResultText(b.String()), nil
}
