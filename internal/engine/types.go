// Package engine drives generation for campaigns.
//
// It ties the combinatorial packages (spintax, cartesian, dedupe) and the
// article pipeline (assembly) to whatever holds campaign data. The data
// side is reached only through the Source, Library and Sink interfaces in
// ports.go; internal/store is the SQL implementation.
//
// Operations:
//   - Generate   enumerate a bounded, resumable slice of a campaign's
//     headline space and persist the new texts
//   - Preview    random samples of a template without writing anything
//   - Metadata   combination counts without generating
//   - AssembleArticle / RunArticleJob  build articles from blocks
package engine

import (
	"fmt"
	"time"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// --- Location mode enum ---

// LocationMode selects which geographic table a campaign is crossed with.
type LocationMode string

const (
	ModeNone   LocationMode = "none"
	ModeState  LocationMode = "state"
	ModeCounty LocationMode = "county"
	ModeCity   LocationMode = "city"
)

var validModes = map[LocationMode]bool{
	ModeNone:   true,
	ModeState:  true,
	ModeCounty: true,
	ModeCity:   true,
}

// ParseLocationMode accepts the four mode names; "" means none.
func ParseLocationMode(s string) (LocationMode, error) {
	if s == "" {
		return ModeNone, nil
	}
	m := LocationMode(s)
	if !validModes[m] {
		return "", fmt.Errorf("invalid location mode %q: must be one of: none, state, county, city", s)
	}
	return m, nil
}

// --- Campaign ---

// Campaign is the configuration a generation run starts from.
type Campaign struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	HeadlineTemplate string            `json:"headline_template" yaml:"headline_template"`
	LocationMode     LocationMode      `json:"location_mode" yaml:"location_mode"`
	LocationTarget   string            `json:"location_target,omitempty" yaml:"location_target,omitempty"`
	NicheVariables   spintax.Variables `json:"niche_variables,omitempty" yaml:"niche_variables,omitempty"`
	// TemplateID is the article template used by article jobs.
	TemplateID string `json:"template_id,omitempty" yaml:"template_id,omitempty"`
	SiteName   string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	SiteURL    string `json:"site_url,omitempty" yaml:"site_url,omitempty"`
	// VariantKey picks the avatar grammar variant (e.g. "male", "female").
	// Empty means neutral.
	VariantKey string    `json:"variant_key,omitempty" yaml:"variant_key,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
}

// --- Headline inventory ---

// HeadlineStatus tracks whether a headline was spent on an article.
type HeadlineStatus string

const (
	HeadlineAvailable HeadlineStatus = "available"
	HeadlineUsed      HeadlineStatus = "used"
)

// Headline is one persisted generation result.
type Headline struct {
	ID             string                 `json:"id"`
	CampaignID     string                 `json:"campaign_id"`
	FinalTitleText string                 `json:"final_title_text"`
	Status         HeadlineStatus         `json:"status"`
	LocationData   *cartesian.LocationRef `json:"location_data,omitempty"`
	UsedOnArticle  string                 `json:"used_on_article,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// --- Generation jobs ---

// JobKind says what a generation job produces.
type JobKind string

const (
	JobHeadlines JobKind = "headlines"
	JobArticles  JobKind = "articles"
)

// JobStatus is a job's lifecycle state.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobComplete   JobStatus = "complete"
)

// Job is a resumable unit of work. CurrentOffset is the position the next
// call continues from.
type Job struct {
	ID             string    `json:"id"`
	CampaignID     string    `json:"campaign_id"`
	Kind           JobKind   `json:"kind"`
	TargetQuantity int64     `json:"target_quantity"`
	CurrentOffset  int64     `json:"current_offset"`
	Status         JobStatus `json:"status"`
	// AvatarIDs restricts an article job to these avatars, cycled in
	// order. Empty means every avatar in the library.
	AvatarIDs  []string  `json:"avatar_ids,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// advance moves the job to offset and derives its status.
func (j *Job) advance(offset int64, exhausted bool) {
	j.CurrentOffset = offset
	switch {
	case exhausted, j.TargetQuantity > 0 && offset >= j.TargetQuantity:
		j.Status = JobComplete
	default:
		j.Status = JobProcessing
	}
}

// --- Work log ---

// Level is the severity of a work log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// WorkEntry is one row of the durable business log.
type WorkEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Message    string         `json:"message"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Level      Level          `json:"level"`
	CreatedAt  time.Time      `json:"created_at"`
}

// --- Library records ---

// Avatar is a reader persona articles are written for.
type Avatar struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	BusinessNiches []string `json:"business_niches,omitempty" yaml:"business_niches,omitempty"`
}

// --- Articles ---

// StoredArticle is a persisted assembled article.
type StoredArticle struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id,omitempty"`
	JobID       string    `json:"job_id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	HTMLContent string    `json:"html_content"`
	MetaDesc    string    `json:"meta_desc"`
	City        string    `json:"location_city,omitempty"`
	County      string    `json:"location_county,omitempty"`
	State       string    `json:"location_state,omitempty"`
	AvatarID    string    `json:"avatar_id,omitempty"`
	Niche       string    `json:"niche,omitempty"`
	// GenerationHash identifies the site/avatar/niche/city/template
	// combination the article was built from.
	GenerationHash string    `json:"generation_hash,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
