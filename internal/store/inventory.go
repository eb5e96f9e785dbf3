package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/engine"
)

const headlineColumns = `id, campaign_id, final_title_text, status, location_data, used_on_article, created_at`

// ExistingHeadlines lists every headline text of a campaign, whatever its
// status.
func (s *Store) ExistingHeadlines(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := s.query(ctx, `SELECT final_title_text FROM headline_inventory WHERE campaign_id = ?`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("store: existing headlines: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("store: scan headline: %w", err)
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

// InsertHeadlines writes rows one by one. A row that fails is skipped and
// its index reported; the remaining rows are still written.
func (s *Store) InsertHeadlines(ctx context.Context, rows []engine.Headline) ([]int, error) {
	var (
		failed []int
		errs   []error
	)
	for i, h := range rows {
		status := h.Status
		if status == "" {
			status = engine.HeadlineAvailable
		}
		var loc sql.NullString
		if h.LocationData != nil {
			loc = sql.NullString{String: encodeJSON(h.LocationData), Valid: true}
		}
		_, err := s.exec(ctx, `INSERT INTO headline_inventory (`+headlineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.CampaignID, h.FinalTitleText, string(status), loc, h.UsedOnArticle, s.stamp(h.CreatedAt))
		if err != nil {
			failed = append(failed, i)
			errs = append(errs, fmt.Errorf("store: insert headline %q: %w", h.FinalTitleText, err))
		}
	}
	return failed, errors.Join(errs...)
}

// NextHeadline returns the oldest available headline of a campaign.
func (s *Store) NextHeadline(ctx context.Context, campaignID string) (engine.Headline, bool, error) {
	row := s.queryRow(ctx, `
		SELECT `+headlineColumns+` FROM headline_inventory
		WHERE campaign_id = ? AND status = ?
		ORDER BY created_at, id LIMIT 1`, campaignID, string(engine.HeadlineAvailable))
	h, err := scanHeadline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Headline{}, false, nil
	}
	if err != nil {
		return engine.Headline{}, false, fmt.Errorf("store: next headline: %w", err)
	}
	return h, true, nil
}

// MarkHeadlineUsed flags a headline as spent on an article.
func (s *Store) MarkHeadlineUsed(ctx context.Context, headlineID, articleID string) error {
	res, err := s.exec(ctx, `UPDATE headline_inventory SET status = ?, used_on_article = ? WHERE id = ?`,
		string(engine.HeadlineUsed), articleID, headlineID)
	if err != nil {
		return fmt.Errorf("store: mark headline %q used: %w", headlineID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: headline %q: %w", headlineID, ErrNotFound)
	}
	return nil
}

// CountHeadlines counts a campaign's headlines with status; an empty
// status counts all of them.
func (s *Store) CountHeadlines(ctx context.Context, campaignID string, status engine.HeadlineStatus) (int, error) {
	if status == "" {
		return s.count(ctx, `SELECT COUNT(*) FROM headline_inventory WHERE campaign_id = ?`, campaignID)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM headline_inventory WHERE campaign_id = ? AND status = ?`,
		campaignID, string(status))
}

// ListHeadlines returns up to limit headlines of a campaign, oldest first.
// An empty status lists every status.
func (s *Store) ListHeadlines(ctx context.Context, campaignID string, status engine.HeadlineStatus, limit int) ([]engine.Headline, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + headlineColumns + ` FROM headline_inventory WHERE campaign_id = ?`
	args := []any{campaignID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	rows, err := s.query(ctx, q+` ORDER BY created_at, id LIMIT ?`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("store: list headlines: %w", err)
	}
	defer rows.Close()

	var out []engine.Headline
	for rows.Next() {
		h, err := scanHeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan headline: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHeadline(sc scanner) (engine.Headline, error) {
	var (
		h          engine.Headline
		status, ts string
		loc        sql.NullString
	)
	if err := sc.Scan(&h.ID, &h.CampaignID, &h.FinalTitleText, &status, &loc, &h.UsedOnArticle, &ts); err != nil {
		return engine.Headline{}, err
	}
	h.Status = engine.HeadlineStatus(status)
	h.CreatedAt = parseTime(ts)
	if loc.Valid && loc.String != "" {
		h.LocationData = &cartesian.LocationRef{}
		if err := decodeJSON(loc.String, h.LocationData); err != nil {
			return engine.Headline{}, err
		}
	}
	return h, nil
}
