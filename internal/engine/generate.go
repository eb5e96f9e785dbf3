package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/dedupe"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// GenerateRequest asks for one slice of a campaign's headline space.
// Empty Template, NicheVariables and LocationMode fall back to the
// campaign record.
type GenerateRequest struct {
	CampaignID      string            `json:"campaign_id"`
	Template        string            `json:"template,omitempty"`
	LocationMode    LocationMode      `json:"location_mode,omitempty"`
	LocationTarget  string            `json:"location_target,omitempty"`
	NicheVariables  spintax.Variables `json:"niche_variables,omitempty"`
	MaxCombinations int64             `json:"max_combinations,omitempty"`
	BatchSize       int               `json:"batch_size,omitempty"`
	Offset          int64             `json:"offset,omitempty"`
}

// Results counts what happened to the candidates of one slice.
type Results struct {
	Processed      int64 `json:"processed"`
	Inserted       int64 `json:"inserted"`
	Skipped        int64 `json:"skipped"`
	Failed         int64 `json:"failed"`
	AlreadyExisted int   `json:"alreadyExisted"`
}

// GenerateResponse reports a slice. NextOffset is where the following slice
// starts; Done means the whole space has been enumerated.
type GenerateResponse struct {
	Metadata   cartesian.Metadata `json:"metadata"`
	Results    Results            `json:"results"`
	NextOffset int64              `json:"nextOffset"`
	Done       bool               `json:"done"`
}

// ErrMissingCampaign is returned when a request names no campaign.
var ErrMissingCampaign = errors.New("campaign id is required")

// Generate enumerates [Offset, Offset+MaxCombinations) of the campaign's
// locations × spintax space, drops texts the campaign already has, and
// persists the rest in BatchSize chunks. A cancelled context stops between
// candidates; the slice processed so far is flushed and reported with the
// context error.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if req.CampaignID == "" {
		return GenerateResponse{}, ErrMissingCampaign
	}
	campaign, err := e.src.FetchCampaign(ctx, req.CampaignID)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("fetch campaign %s: %w", req.CampaignID, err)
	}

	template := req.Template
	if template == "" {
		template = campaign.HeadlineTemplate
	}
	if template == "" {
		return GenerateResponse{}, fmt.Errorf("campaign %s has no headline template", campaign.ID)
	}
	niche := req.NicheVariables
	if niche == nil {
		niche, err = e.src.FetchNicheVariables(ctx, campaign.ID)
		if err != nil {
			e.log.Warn("niche variables unavailable", zap.String("campaign", campaign.ID), zap.Error(err))
			niche = nil
		}
	}
	mode, target := req.LocationMode, req.LocationTarget
	if mode == "" {
		mode, target = campaign.LocationMode, campaign.LocationTarget
	}
	if mode, err = ParseLocationMode(string(mode)); err != nil {
		return GenerateResponse{}, err
	}

	limit := req.MaxCombinations
	if limit <= 0 {
		limit = e.limits.MaxCombinations
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = e.limits.BatchSize
	}
	offset := max(req.Offset, 0)

	locations := e.locations(ctx, campaign.ID, mode, target)
	window := cartesian.Window{Offset: offset, Limit: limit}
	resp := GenerateResponse{Metadata: cartesian.Describe(template, len(locations), window)}

	existing, err := e.sink.ExistingHeadlines(ctx, campaign.ID)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("load existing headlines: %w", err)
	}
	gate := dedupe.NewGate(existing)
	resp.Results.AlreadyExisted = gate.Existing()

	pending := make([]Headline, 0, min(int64(batchSize), resp.Metadata.GeneratedCount))
	flush := func() {
		if len(pending) == 0 {
			return
		}
		failed, err := e.sink.InsertHeadlines(ctx, pending)
		if err != nil && len(failed) == 0 {
			// No per-row detail: nothing in the chunk is known to be stored.
			failed = make([]int, len(pending))
			for i := range failed {
				failed[i] = i
			}
		}
		resp.Results.Inserted += int64(len(pending) - len(failed))
		if len(failed) > 0 {
			resp.Results.Failed += int64(len(failed))
			e.log.Warn("headline batch partially failed",
				zap.String("campaign", campaign.ID), zap.Int("failed", len(failed)), zap.Error(err))
			for _, i := range failed {
				gate.Forget(pending[i].FinalTitleText)
			}
		}
		pending = pending[:0]
	}

	var stopErr error
	for r := range cartesian.WithLocations(template, locations, niche, window) {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		resp.Results.Processed++
		if !gate.Admit(r.Text) {
			continue
		}
		pending = append(pending, Headline{
			ID:             uuid.NewString(),
			CampaignID:     campaign.ID,
			FinalTitleText: r.Text,
			Status:         HeadlineAvailable,
			LocationData:   r.Location,
			CreatedAt:      e.now().UTC(),
		})
		if len(pending) >= batchSize {
			flush()
		}
	}
	flush()
	resp.Results.Skipped = int64(gate.Skipped())

	start := min(offset, resp.Metadata.TotalPossibleCombinations)
	resp.NextOffset = start + resp.Results.Processed
	resp.Done = resp.NextOffset >= resp.Metadata.TotalPossibleCombinations

	e.advanceHeadlineJob(ctx, campaign.ID, resp)
	e.work(ctx, WorkEntry{
		Action:     "headlines_generated",
		Message:    fmt.Sprintf("Generated %d headlines (%d skipped, %d failed)", resp.Results.Inserted, resp.Results.Skipped, resp.Results.Failed),
		EntityType: "campaign",
		EntityID:   campaign.ID,
		Details: map[string]any{
			"processed":   resp.Results.Processed,
			"inserted":    resp.Results.Inserted,
			"skipped":     resp.Results.Skipped,
			"failed":      resp.Results.Failed,
			"next_offset": resp.NextOffset,
			"total":       resp.Metadata.TotalPossibleCombinations,
		},
		Level: generateLevel(resp.Results),
	})
	e.log.Info("headlines generated",
		zap.String("campaign", campaign.ID),
		zap.Int64("processed", resp.Results.Processed),
		zap.Int64("inserted", resp.Results.Inserted),
		zap.Int64("next_offset", resp.NextOffset))

	return resp, stopErr
}

func generateLevel(r Results) Level {
	switch {
	case r.Failed > 0 && r.Inserted == 0:
		return LevelError
	case r.Failed > 0:
		return LevelWarning
	default:
		return LevelSuccess
	}
}

// locations fetches the campaign's axis. A failed fetch degrades to zero
// locations.
func (e *Engine) locations(ctx context.Context, campaignID string, mode LocationMode, target string) []cartesian.Location {
	if mode == ModeNone {
		return nil
	}
	locs, err := e.src.FetchLocations(ctx, mode, target)
	if err != nil {
		e.log.Warn("location fetch failed, continuing without locations",
			zap.String("campaign", campaignID), zap.String("mode", string(mode)), zap.Error(err))
		e.work(ctx, WorkEntry{
			Action:     "location_fetch_failed",
			Message:    "Locations unavailable, generated without location axis",
			EntityType: "campaign",
			EntityID:   campaignID,
			Details:    map[string]any{"mode": string(mode), "target": target, "error": err.Error()},
			Level:      LevelWarning,
		})
		return nil
	}
	return locs
}

// advanceHeadlineJob records the new offset on the campaign's headlines
// job, when it has one.
func (e *Engine) advanceHeadlineJob(ctx context.Context, campaignID string, resp GenerateResponse) {
	job, ok, err := e.sink.HeadlineJob(ctx, campaignID)
	if err != nil {
		e.log.Warn("headline job lookup failed", zap.String("campaign", campaignID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	job.advance(resp.NextOffset, resp.Done)
	job.UpdatedAt = e.now().UTC()
	if err := e.sink.SaveJob(ctx, job); err != nil {
		e.log.Warn("headline job update failed", zap.String("job", job.ID), zap.Error(err))
	}
}
