// Package prompts implements the spinforge MCP prompts.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the campaign-status MCP prompt.
// It instructs the host to inspect a campaign's inventory and jobs.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("campaign-status",
		mcp.WithPromptDescription(
			"Check where a content campaign stands: combination space, "+
				"headline inventory, job progress and what to run next.",
		),
		mcp.WithArgument("campaign_id",
			mcp.ArgumentDescription("Campaign to inspect. Leave empty to pick from the campaign list"),
		),
	)
}

// Handle processes the campaign-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	campaignID := ""
	if args := req.Params.Arguments; args != nil {
		campaignID = args["campaign_id"]
	}

	target := "Ask me which campaign to inspect, listing the ones in `spinforge://campaigns`."
	description := "Campaign status"
	if campaignID != "" {
		target = fmt.Sprintf("The campaign is `%s`.", campaignID)
		description = fmt.Sprintf("Campaign status: %s", campaignID)
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please check the status of my spinforge campaign. " + target + "\n\n" +
						"Then:\n" +
						"1. Read `spinforge://campaigns` for its template, location mode and job offsets\n" +
						"2. Run `cartesian_count` with the campaign_id to show the combination space\n" +
						"3. Run `inventory_list` with status='available' to show unused headlines\n" +
						"4. Tell me whether to run `cartesian_generate` (next offset) or `article_job_run` next",
				),
			},
		},
	}, nil
}
