// Package resources implements the spinforge MCP resources.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (spinforge://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// CampaignsURI addresses the campaign overview.
const CampaignsURI = "spinforge://campaigns"

// Catalog is the store surface the campaign overview reads.
type Catalog interface {
	ListCampaigns(ctx context.Context) ([]engine.Campaign, error)
	ListJobs(ctx context.Context, campaignID string) ([]engine.Job, error)
	CountHeadlines(ctx context.Context, campaignID string, status engine.HeadlineStatus) (int, error)
}

// Handler manages spinforge resource endpoints.
type Handler struct {
	catalog Catalog
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// CampaignsResource returns the MCP resource definition for the campaign
// overview.
func (h *Handler) CampaignsResource() mcp.Resource {
	return mcp.NewResource(
		CampaignsURI,
		"Spinforge Campaigns",
		mcp.WithResourceDescription("Every campaign with its template, location mode, inventory counts and job offsets"),
		mcp.WithMIMEType("application/json"),
	)
}

type campaignView struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	HeadlineTemplate   string       `json:"headline_template"`
	LocationMode       string       `json:"location_mode"`
	LocationTarget     string       `json:"location_target,omitempty"`
	TemplateID         string       `json:"template_id,omitempty"`
	Headlines          int          `json:"headlines"`
	AvailableHeadlines int          `json:"available_headlines"`
	Jobs               []engine.Job `json:"jobs"`
}

// HandleCampaigns returns the campaign overview as JSON.
func (h *Handler) HandleCampaigns(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	campaigns, err := h.catalog.ListCampaigns(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	// Each campaign's follow-up queries run after the list rows are closed.
	views := make([]campaignView, 0, len(campaigns))
	for _, c := range campaigns {
		v := campaignView{
			ID:               c.ID,
			Name:             c.Name,
			HeadlineTemplate: c.HeadlineTemplate,
			LocationMode:     string(c.LocationMode),
			LocationTarget:   c.LocationTarget,
			TemplateID:       c.TemplateID,
			Jobs:             []engine.Job{},
		}
		if v.Headlines, err = h.catalog.CountHeadlines(ctx, c.ID, ""); err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		if v.AvailableHeadlines, err = h.catalog.CountHeadlines(ctx, c.ID, engine.HeadlineAvailable); err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		jobs, err := h.catalog.ListJobs(ctx, c.ID)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		if len(jobs) > 0 {
			v.Jobs = jobs
		}
		views = append(views, v)
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling campaigns: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
