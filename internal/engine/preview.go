package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// PreviewRequest asks for random samples of a template. When Template is
// empty the campaign's headline template is used, and the campaign's
// locations count towards the metadata.
type PreviewRequest struct {
	CampaignID   string `json:"campaign_id,omitempty"`
	Template     string `json:"template,omitempty"`
	PreviewCount int    `json:"preview_count,omitempty"`
}

// PreviewResponse holds the metadata and the samples.
type PreviewResponse struct {
	Metadata cartesian.Metadata `json:"metadata"`
	Preview  []string           `json:"preview"`
}

// ErrMissingTemplate is returned when neither a template nor a campaign
// with one was given.
var ErrMissingTemplate = errors.New("template is required")

// Preview resolves the template PreviewCount times with random option
// choices. Samples may repeat; nothing is written.
func (e *Engine) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	template, locations, err := e.resolveScope(ctx, req.CampaignID, req.Template, "", "")
	if err != nil {
		return PreviewResponse{}, err
	}
	n := req.PreviewCount
	if n <= 0 {
		n = e.limits.PreviewCount
	}

	resp := PreviewResponse{
		Metadata: cartesian.Describe(template, locations, cartesian.Window{Limit: e.limits.MaxCombinations}),
		Preview:  make([]string, n),
	}
	for i := range resp.Preview {
		resp.Preview[i] = spintax.ResolveRandom(template, e.rng)
	}
	return resp, nil
}

// MetadataRequest describes a product space to count.
type MetadataRequest struct {
	CampaignID      string       `json:"campaign_id,omitempty"`
	Template        string       `json:"template,omitempty"`
	LocationMode    LocationMode `json:"location_mode,omitempty"`
	LocationTarget  string       `json:"location_target,omitempty"`
	MaxCombinations int64        `json:"max_combinations,omitempty"`
}

// Metadata counts the combinations of a template crossed with the
// selected locations, without generating any.
func (e *Engine) Metadata(ctx context.Context, req MetadataRequest) (cartesian.Metadata, error) {
	template, locations, err := e.resolveScope(ctx, req.CampaignID, req.Template, req.LocationMode, req.LocationTarget)
	if err != nil {
		return cartesian.Metadata{}, err
	}
	limit := req.MaxCombinations
	if limit <= 0 {
		limit = e.limits.MaxCombinations
	}
	return cartesian.Describe(template, locations, cartesian.Window{Limit: limit}), nil
}

// resolveScope returns the template and location count a request refers
// to. An explicit mode wins over the campaign's.
func (e *Engine) resolveScope(ctx context.Context, campaignID, template string, mode LocationMode, target string) (string, int, error) {
	if campaignID != "" {
		c, err := e.src.FetchCampaign(ctx, campaignID)
		if err != nil {
			return "", 0, fmt.Errorf("fetch campaign %s: %w", campaignID, err)
		}
		if template == "" {
			template = c.HeadlineTemplate
		}
		if mode == "" {
			mode, target = c.LocationMode, c.LocationTarget
		}
	}
	if template == "" {
		return "", 0, ErrMissingTemplate
	}
	mode, err := ParseLocationMode(string(mode))
	if err != nil {
		return "", 0, err
	}
	return template, len(e.locations(ctx, campaignID, mode, target)), nil
}
