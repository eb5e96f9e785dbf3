package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/HendryAvila/spinforge/internal/engine"
)

const articleColumns = `id, campaign_id, job_id, title, slug, html_content, meta_desc,
	location_city, location_county, location_state, avatar_id, niche, generation_hash, created_at`

// ArticleExists reports whether an article was generated from the
// combination with this hash.
func (s *Store) ArticleExists(ctx context.Context, generationHash string) (bool, error) {
	if generationHash == "" {
		return false, nil
	}
	n, err := s.count(ctx, `SELECT COUNT(*) FROM generated_articles WHERE generation_hash = ?`, generationHash)
	if err != nil {
		return false, fmt.Errorf("store: article exists: %w", err)
	}
	return n > 0, nil
}

// SaveArticle stores a new article. A slug already in use gets the first
// free -2, -3, ... suffix; the stored record carries the final slug.
func (s *Store) SaveArticle(ctx context.Context, a engine.StoredArticle) (engine.StoredArticle, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Slug == "" {
		a.Slug = "article"
	}
	slug, err := s.freeSlug(ctx, a.Slug)
	if err != nil {
		return engine.StoredArticle{}, err
	}
	a.Slug = slug
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	_, err = s.exec(ctx, `INSERT INTO generated_articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CampaignID, a.JobID, a.Title, a.Slug, a.HTMLContent, a.MetaDesc,
		a.City, a.County, a.State, a.AvatarID, a.Niche, a.GenerationHash, formatTime(a.CreatedAt))
	if err != nil {
		return engine.StoredArticle{}, fmt.Errorf("store: save article %q: %w", a.Slug, err)
	}
	return a, nil
}

func (s *Store) freeSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		taken, err := s.count(ctx, `SELECT COUNT(*) FROM generated_articles WHERE slug = ?`, slug)
		if err != nil {
			return "", fmt.Errorf("store: check slug %q: %w", slug, err)
		}
		if taken == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// GetArticle returns an article by slug.
func (s *Store) GetArticle(ctx context.Context, slug string) (engine.StoredArticle, error) {
	a, err := scanArticle(s.queryRow(ctx, `SELECT `+articleColumns+` FROM generated_articles WHERE slug = ?`, slug))
	if err != nil {
		return engine.StoredArticle{}, notFound(err, "article", slug)
	}
	return a, nil
}

// ListArticles returns up to limit articles of a campaign, newest first.
func (s *Store) ListArticles(ctx context.Context, campaignID string, limit int) ([]engine.StoredArticle, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.query(ctx, `SELECT `+articleColumns+` FROM generated_articles
		WHERE campaign_id = ? ORDER BY created_at DESC, id LIMIT ?`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list articles: %w", err)
	}
	defer rows.Close()

	var out []engine.StoredArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArticle(sc scanner) (engine.StoredArticle, error) {
	var (
		a  engine.StoredArticle
		ts string
	)
	err := sc.Scan(&a.ID, &a.CampaignID, &a.JobID, &a.Title, &a.Slug, &a.HTMLContent, &a.MetaDesc,
		&a.City, &a.County, &a.State, &a.AvatarID, &a.Niche, &a.GenerationHash, &ts)
	a.CreatedAt = parseTime(ts)
	return a, err
}
