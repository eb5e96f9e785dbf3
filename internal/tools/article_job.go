package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// JobRunner advances article jobs.
type JobRunner interface {
	RunArticleJob(ctx context.Context, jobID string, batch int) (engine.ArticleJobResult, error)
}

// ArticleJobTool handles the article_job_run MCP tool.
type ArticleJobTool struct {
	engine JobRunner
}

// NewArticleJobTool creates an ArticleJobTool.
func NewArticleJobTool(e JobRunner) *ArticleJobTool {
	return &ArticleJobTool{engine: e}
}

// Definition returns the MCP tool definition for article_job_run.
func (t *ArticleJobTool) Definition() mcp.Tool {
	return mcp.NewTool("article_job_run",
		mcp.WithDescription(
			"Process the next batch of an article generation job. Avatars are cycled in order and "+
				"available headlines are used as titles. Call repeatedly until completed is true.",
		),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Articles job to advance"),
		),
		mcp.WithNumber("batch",
			mcp.Description("Articles to generate in this call (default 5)"),
		),
		mcp.WithBoolean("include_articles",
			mcp.Description("List the generated articles' titles and slugs (default true)"),
		),
	)
}

type jobArticle struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	City  string `json:"city,omitempty"`
}

type jobResult struct {
	engine.ArticleJobResult
	Articles []jobArticle `json:"articles,omitempty"`
}

// Handle processes the article_job_run tool call.
func (t *ArticleJobTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("'job_id' is required"), nil
	}

	res, err := t.engine.RunArticleJob(ctx, jobID, intArg(req, "batch", 0))
	switch {
	case errors.Is(err, engine.ErrJobComplete):
		return mcp.NewToolResultText(fmt.Sprintf("Job %s is already complete.", jobID)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("article job failed: %v", err)), nil
	}

	out := jobResult{ArticleJobResult: res}
	out.ArticleJobResult.Articles = nil
	if boolArg(req, "include_articles", true) {
		for _, a := range res.Articles {
			out.Articles = append(out.Articles, jobArticle{Title: a.Title, Slug: a.Slug, City: a.City})
		}
	}
	return jsonResult(out)
}
