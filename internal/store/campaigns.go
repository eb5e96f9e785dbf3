package store

import (
	"context"
	"fmt"

	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

const campaignColumns = `id, name, headline_template, location_mode, location_target,
	niche_variables, template_id, site_name, site_url, variant_key, created_at`

// SaveCampaign inserts or replaces a campaign.
func (s *Store) SaveCampaign(ctx context.Context, c engine.Campaign) error {
	if c.ID == "" {
		return fmt.Errorf("store: campaign id is required")
	}
	mode := c.LocationMode
	if mode == "" {
		mode = engine.ModeNone
	}
	_, err := s.exec(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			headline_template = excluded.headline_template,
			location_mode = excluded.location_mode,
			location_target = excluded.location_target,
			niche_variables = excluded.niche_variables,
			template_id = excluded.template_id,
			site_name = excluded.site_name,
			site_url = excluded.site_url,
			variant_key = excluded.variant_key`,
		c.ID, c.Name, c.HeadlineTemplate, string(mode), c.LocationTarget,
		encodeJSON(nonNilVars(c.NicheVariables)), c.TemplateID, c.SiteName, c.SiteURL, c.VariantKey,
		s.stamp(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("store: save campaign %q: %w", c.ID, err)
	}
	return nil
}

// FetchCampaign returns a campaign by id.
func (s *Store) FetchCampaign(ctx context.Context, id string) (engine.Campaign, error) {
	row := s.queryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if err != nil {
		return engine.Campaign{}, notFound(err, "campaign", id)
	}
	return c, nil
}

// ListCampaigns returns every campaign, newest first.
func (s *Store) ListCampaigns(ctx context.Context) ([]engine.Campaign, error) {
	rows, err := s.query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list campaigns: %w", err)
	}
	defer rows.Close()

	var out []engine.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FetchNicheVariables returns the niche variables of a campaign.
func (s *Store) FetchNicheVariables(ctx context.Context, campaignID string) (spintax.Variables, error) {
	var raw string
	err := s.queryRow(ctx, `SELECT niche_variables FROM campaigns WHERE id = ?`, campaignID).Scan(&raw)
	if err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	vars := spintax.Variables{}
	if err := decodeJSON(raw, &vars); err != nil {
		return nil, fmt.Errorf("store: niche variables of %q: %w", campaignID, err)
	}
	return vars, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(sc scanner) (engine.Campaign, error) {
	var (
		c               engine.Campaign
		mode, vars, ts string
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.HeadlineTemplate, &mode, &c.LocationTarget,
		&vars, &c.TemplateID, &c.SiteName, &c.SiteURL, &c.VariantKey, &ts); err != nil {
		return engine.Campaign{}, err
	}
	c.LocationMode = engine.LocationMode(mode)
	c.CreatedAt = parseTime(ts)
	if err := decodeJSON(vars, &c.NicheVariables); err != nil {
		return engine.Campaign{}, err
	}
	return c, nil
}

func nonNilVars(v spintax.Variables) spintax.Variables {
	if v == nil {
		return spintax.Variables{}
	}
	return v
}
