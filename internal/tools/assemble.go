package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/engine"
)

// Assembler builds single articles.
type Assembler interface {
	AssembleArticle(ctx context.Context, req engine.AssembleRequest) (engine.AssembleResponse, error)
}

// AssembleTool handles the article_assemble MCP tool.
type AssembleTool struct {
	engine Assembler
}

// NewAssembleTool creates an AssembleTool.
func NewAssembleTool(e Assembler) *AssembleTool {
	return &AssembleTool{engine: e}
}

// Definition returns the MCP tool definition for article_assemble.
func (t *AssembleTool) Definition() mcp.Tool {
	return mcp.NewTool("article_assemble",
		mcp.WithDescription(
			"Assemble one HTML article from a template's content blocks, personalized for an avatar, "+
				"a niche and a city. Spintax, placeholders and grammar tokens are resolved once per article.",
		),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("Article template (ordered list of content blocks)"),
		),
		mcp.WithString("avatar_id",
			mcp.Description("Reader persona; its variant drives pronoun agreement"),
		),
		mcp.WithString("variant_key",
			mcp.Description("Avatar grammar variant, e.g. male or female (default neutral)"),
		),
		mcp.WithString("niche",
			mcp.Description("Business niche (default Business)"),
		),
		mcp.WithString("city_id",
			mcp.Description("City the article targets"),
		),
		mcp.WithString("campaign_id",
			mcp.Description("Campaign the article belongs to"),
		),
		mcp.WithString("site_name",
			mcp.Description("Publishing site name"),
		),
		mcp.WithString("site_url",
			mcp.Description("Publishing site URL"),
		),
		mcp.WithObject("variables",
			mcp.Description("Extra {name} placeholder values"),
		),
		mcp.WithString("title",
			mcp.Description("Use this title instead of a generated one"),
		),
		mcp.WithBoolean("persist",
			mcp.Description("Store the article (default false)"),
		),
		mcp.WithBoolean("include_html",
			mcp.Description("Return the full HTML (default true)"),
		),
	)
}

type assembleResult struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	MetaDesc    string `json:"meta_desc"`
	HTMLContent string `json:"html_content,omitempty"`
	Blocks      int    `json:"blocks"`
	StoredID    string `json:"stored_id,omitempty"`
}

// Handle processes the article_assemble tool call.
func (t *AssembleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID := req.GetString("template_id", "")
	if templateID == "" {
		return mcp.NewToolResultError("'template_id' is required"), nil
	}

	resp, err := t.engine.AssembleArticle(ctx, engine.AssembleRequest{
		TemplateID: templateID,
		AvatarID:   req.GetString("avatar_id", ""),
		VariantKey: req.GetString("variant_key", ""),
		Niche:      req.GetString("niche", ""),
		CityID:     req.GetString("city_id", ""),
		CampaignID: req.GetString("campaign_id", ""),
		Site: assembly.Site{
			Name: req.GetString("site_name", ""),
			URL:  req.GetString("site_url", ""),
		},
		Variables: varsArg(req, "variables"),
		Title:     req.GetString("title", ""),
		Persist:   boolArg(req, "persist", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assembly failed: %v", err)), nil
	}

	out := assembleResult{
		Title:    resp.Article.Title,
		Slug:     resp.Article.Slug,
		MetaDesc: resp.Article.MetaDesc,
		Blocks:   len(resp.Article.Blocks),
	}
	if boolArg(req, "include_html", true) {
		out.HTMLContent = resp.Article.HTMLContent
	}
	if resp.Stored != nil {
		out.Slug = resp.Stored.Slug
		out.StoredID = resp.Stored.ID
	}
	return jsonResult(out)
}
