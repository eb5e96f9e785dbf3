package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/dedupe"
	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// AssembleRequest builds a single article.
type AssembleRequest struct {
	TemplateID string `json:"template_id"`
	AvatarID   string `json:"avatar_id,omitempty"`
	// VariantKey picks the avatar's grammar variant; empty is neutral.
	VariantKey string            `json:"variant_key,omitempty"`
	Niche      string            `json:"niche,omitempty"`
	CityID     string            `json:"city_id,omitempty"`
	CampaignID string            `json:"campaign_id,omitempty"`
	Site       assembly.Site     `json:"site,omitempty"`
	Variables  spintax.Variables `json:"variables,omitempty"`
	Title      string            `json:"title,omitempty"`
	Slug       string            `json:"slug,omitempty"`
	// Persist stores the article in generated_articles.
	Persist bool `json:"persist,omitempty"`
}

// AssembleResponse carries the article and, when persisted, its record.
type AssembleResponse struct {
	Article assembly.Article `json:"article"`
	Stored  *StoredArticle   `json:"stored,omitempty"`
}

// AssembleArticle resolves a template for one avatar, niche and city.
func (e *Engine) AssembleArticle(ctx context.Context, req AssembleRequest) (AssembleResponse, error) {
	if req.TemplateID == "" {
		return AssembleResponse{}, errors.New("template id is required")
	}
	tmpl, err := e.lib.FetchTemplate(ctx, req.TemplateID)
	if err != nil {
		return AssembleResponse{}, fmt.Errorf("fetch template %s: %w", req.TemplateID, err)
	}

	var city cartesian.Location
	if req.CityID != "" {
		if city, err = e.lib.FetchCity(ctx, req.CityID); err != nil {
			return AssembleResponse{}, fmt.Errorf("fetch city %s: %w", req.CityID, err)
		}
	}

	c := assembly.Context{
		AvatarID:  req.AvatarID,
		Variant:   e.variant(ctx, req.AvatarID, req.VariantKey),
		Niche:     req.Niche,
		City:      city,
		Site:      req.Site,
		Template:  tmpl,
		Variables: req.Variables,
	}
	article, err := e.pipeline.Assemble(ctx, c, assembly.Overrides{Title: req.Title, Slug: req.Slug})
	if err != nil {
		return AssembleResponse{}, err
	}

	resp := AssembleResponse{Article: article}
	if !req.Persist {
		return resp, nil
	}
	stored, err := e.sink.SaveArticle(ctx, e.storedArticle(article, c, req.CampaignID, ""))
	if err != nil {
		return AssembleResponse{}, fmt.Errorf("save article: %w", err)
	}
	resp.Stored = &stored
	e.work(ctx, WorkEntry{
		Action:     "article_assembled",
		Message:    fmt.Sprintf("Assembled %q", stored.Title),
		EntityType: "article",
		EntityID:   stored.ID,
		Details:    map[string]any{"template": tmpl.ID, "avatar": req.AvatarID, "slug": stored.Slug},
		Level:      LevelSuccess,
	})
	return resp, nil
}

// variant loads an avatar's grammar variant, falling back to neutral.
func (e *Engine) variant(ctx context.Context, avatarID, key string) grammar.Variant {
	if avatarID == "" {
		return grammar.Neutral()
	}
	if key == "" {
		key = grammar.NeutralKey
	}
	v, err := e.lib.FetchVariant(ctx, avatarID, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.log.Warn("avatar variant unavailable, using neutral",
				zap.String("avatar", avatarID), zap.String("variant", key), zap.Error(err))
		}
		return grammar.Neutral()
	}
	return v
}

func (e *Engine) storedArticle(a assembly.Article, c assembly.Context, campaignID, jobID string) StoredArticle {
	return StoredArticle{
		ID:             uuid.NewString(),
		CampaignID:     campaignID,
		JobID:          jobID,
		Title:          a.Title,
		Slug:           a.Slug,
		HTMLContent:    a.HTMLContent,
		MetaDesc:       a.MetaDesc,
		City:           c.City.City,
		County:         c.City.County,
		State:          c.City.State,
		AvatarID:       c.AvatarID,
		Niche:          c.Niche,
		GenerationHash: generationHash(c),
		CreatedAt:      e.now().UTC(),
	}
}

// generationHash identifies the inputs of an article.
func generationHash(c assembly.Context) string {
	return dedupe.Hash(c.Site.Name, c.AvatarID, c.Niche, c.City.ID, c.Template.ID)
}

// ─── Article jobs ───────────────────────────────────────────────────────────

// ArticleJobResult reports one batch of an article job.
type ArticleJobResult struct {
	JobID              string          `json:"job_id"`
	Generated          int             `json:"generated"`
	Skipped            int             `json:"skipped"`
	Failed             int             `json:"failed"`
	Articles           []StoredArticle `json:"articles,omitempty"`
	CurrentOffset      int64           `json:"current_offset"`
	Completed          bool            `json:"completed"`
	RemainingHeadlines int             `json:"remaining_headlines"`
}

// ErrJobComplete is returned for a job that has nothing left to do.
var ErrJobComplete = errors.New("job already complete")

// RunArticleJob generates up to batch articles for an articles job and
// advances its offset. Each position picks the avatar at
// (offset+i) % len(avatars); an available headline of the campaign, when
// there is one, becomes the title and supplies the location. A combination
// that was already generated counts as skipped but still consumes its
// position.
func (e *Engine) RunArticleJob(ctx context.Context, jobID string, batch int) (ArticleJobResult, error) {
	job, err := e.sink.GetJob(ctx, jobID)
	if err != nil {
		return ArticleJobResult{}, fmt.Errorf("fetch job %s: %w", jobID, err)
	}
	if job.Kind != JobArticles {
		return ArticleJobResult{}, fmt.Errorf("job %s is a %s job, not articles", job.ID, job.Kind)
	}
	if job.Status == JobComplete {
		return ArticleJobResult{JobID: job.ID, CurrentOffset: job.CurrentOffset, Completed: true}, ErrJobComplete
	}
	if batch <= 0 {
		batch = e.limits.ArticleBatch
	}

	campaign, err := e.src.FetchCampaign(ctx, job.CampaignID)
	if err != nil {
		return ArticleJobResult{}, fmt.Errorf("fetch campaign %s: %w", job.CampaignID, err)
	}
	templateID := job.TemplateID
	if templateID == "" {
		templateID = campaign.TemplateID
	}
	tmpl, err := e.lib.FetchTemplate(ctx, templateID)
	if err != nil {
		return ArticleJobResult{}, fmt.Errorf("fetch template %q: %w", templateID, err)
	}
	avatars, err := e.jobAvatars(ctx, job)
	if err != nil {
		return ArticleJobResult{}, err
	}
	niche, err := e.src.FetchNicheVariables(ctx, campaign.ID)
	if err != nil {
		e.log.Warn("niche variables unavailable", zap.String("campaign", campaign.ID), zap.Error(err))
	}
	cities := e.locations(ctx, campaign.ID, cityMode(campaign.LocationMode), campaign.LocationTarget)
	site := assembly.Site{Name: campaign.SiteName, URL: campaign.SiteURL}

	res := ArticleJobResult{JobID: job.ID}
	offset := job.CurrentOffset
	done := 0
	for i := 0; i < batch && (job.TargetQuantity <= 0 || offset+int64(i) < job.TargetQuantity); i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		pos := offset + int64(i)
		done++
		avatar := avatars[pos%int64(len(avatars))]

		c := assembly.Context{
			AvatarID:  avatar.ID,
			Variant:   e.variant(ctx, avatar.ID, campaign.VariantKey),
			Niche:     e.pickNiche(avatar, niche),
			Site:      site,
			Template:  tmpl,
			Variables: niche,
		}
		if len(cities) > 0 {
			c.City = cities[pos%int64(len(cities))]
		}

		headline, hasHeadline, err := e.sink.NextHeadline(ctx, campaign.ID)
		if err != nil {
			e.log.Warn("headline lookup failed", zap.String("campaign", campaign.ID), zap.Error(err))
		}
		var overrides assembly.Overrides
		if hasHeadline {
			if headline.LocationData != nil {
				c.City = locationFromRef(*headline.LocationData)
			}
			overrides.Title = headline.FinalTitleText
		}

		hash := generationHash(c)
		if exists, err := e.sink.ArticleExists(ctx, hash); err == nil && exists && !hasHeadline {
			res.Skipped++
			continue
		}

		article, err := e.pipeline.Assemble(ctx, c, overrides)
		if err != nil {
			// Only cancellation fails an assembly; leave the position.
			done--
			break
		}
		stored, err := e.sink.SaveArticle(ctx, e.storedArticle(article, c, campaign.ID, job.ID))
		if err != nil {
			res.Failed++
			e.log.Warn("article save failed", zap.String("job", job.ID), zap.Int64("position", pos), zap.Error(err))
			continue
		}
		if hasHeadline {
			if err := e.sink.MarkHeadlineUsed(ctx, headline.ID, stored.ID); err != nil {
				e.log.Warn("headline not marked used", zap.String("headline", headline.ID), zap.Error(err))
			}
		}
		res.Generated++
		res.Articles = append(res.Articles, stored)
	}

	job.advance(offset+int64(done), false)
	job.UpdatedAt = e.now().UTC()
	if err := e.sink.SaveJob(ctx, job); err != nil {
		return res, fmt.Errorf("save job %s: %w", job.ID, err)
	}
	res.CurrentOffset = job.CurrentOffset
	res.Completed = job.Status == JobComplete
	if n, err := e.sink.CountHeadlines(ctx, campaign.ID, HeadlineAvailable); err == nil {
		res.RemainingHeadlines = n
	}

	e.work(ctx, WorkEntry{
		Action:     "articles_generated",
		Message:    fmt.Sprintf("Generated %d articles for job %s", res.Generated, job.ID),
		EntityType: "generation_job",
		EntityID:   job.ID,
		Details: map[string]any{
			"generated":      res.Generated,
			"skipped":        res.Skipped,
			"failed":         res.Failed,
			"current_offset": res.CurrentOffset,
			"target":         job.TargetQuantity,
		},
		Level: jobLevel(res),
	})
	return res, ctx.Err()
}

func jobLevel(r ArticleJobResult) Level {
	switch {
	case r.Failed > 0 && r.Generated == 0:
		return LevelError
	case r.Failed > 0:
		return LevelWarning
	default:
		return LevelSuccess
	}
}

// jobAvatars resolves the avatars a job cycles through, in order.
func (e *Engine) jobAvatars(ctx context.Context, job Job) ([]Avatar, error) {
	if len(job.AvatarIDs) == 0 {
		all, err := e.lib.ListAvatars(ctx)
		if err != nil {
			return nil, fmt.Errorf("list avatars: %w", err)
		}
		if len(all) == 0 {
			return []Avatar{{ID: "", Name: "Generic"}}, nil
		}
		return all, nil
	}
	out := make([]Avatar, 0, len(job.AvatarIDs))
	for _, id := range job.AvatarIDs {
		a, err := e.lib.FetchAvatar(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch avatar %s: %w", id, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// pickNiche prefers the campaign's niche variable, then one of the
// avatar's business niches.
func (e *Engine) pickNiche(a Avatar, vars spintax.Variables) string {
	if n, ok := vars.Lookup("niche"); ok && n != "" {
		return n
	}
	switch len(a.BusinessNiches) {
	case 0:
		return assembly.DefaultNiche
	case 1:
		return a.BusinessNiches[0]
	}
	if e.rng != nil {
		return a.BusinessNiches[e.rng.IntN(len(a.BusinessNiches))]
	}
	return a.BusinessNiches[rand.IntN(len(a.BusinessNiches))]
}

// cityMode maps a campaign's location mode to the axis article jobs draw
// cities from. Campaigns without one use the most populous cities.
func cityMode(m LocationMode) LocationMode {
	if m == "" || m == ModeNone {
		return ModeCity
	}
	return m
}

func locationFromRef(r cartesian.LocationRef) cartesian.Location {
	return cartesian.Location{ID: r.ID, City: r.City, County: r.County, State: r.State, StateCode: r.StateCode}
}
