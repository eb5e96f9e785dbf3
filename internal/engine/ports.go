package engine

import (
	"context"
	"errors"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// ErrNotFound is returned by ports for records that do not exist.
// Implementations wrap or return it so callers can use errors.Is.
var ErrNotFound = errors.New("not found")

// Source reads campaign inputs.
type Source interface {
	assembly.BlockSource
	FetchCampaign(ctx context.Context, id string) (Campaign, error)
	// FetchLocations returns the locations a mode/target selects,
	// already ordered and capped per mode.
	FetchLocations(ctx context.Context, mode LocationMode, target string) ([]cartesian.Location, error)
	FetchNicheVariables(ctx context.Context, campaignID string) (spintax.Variables, error)
}

// Library reads the article building material besides blocks.
type Library interface {
	FetchTemplate(ctx context.Context, id string) (assembly.Template, error)
	FetchAvatar(ctx context.Context, id string) (Avatar, error)
	ListAvatars(ctx context.Context) ([]Avatar, error)
	// FetchVariant returns the grammar variant key of an avatar.
	FetchVariant(ctx context.Context, avatarID, key string) (grammar.Variant, error)
	FetchCity(ctx context.Context, id string) (cartesian.Location, error)
}

// Sink persists generation output.
type Sink interface {
	// ExistingHeadlines lists every headline text of a campaign.
	ExistingHeadlines(ctx context.Context, campaignID string) ([]string, error)
	// InsertHeadlines writes every row it can. failed holds the indices
	// of rows that were not stored; err describes them.
	InsertHeadlines(ctx context.Context, rows []Headline) (failed []int, err error)
	NextHeadline(ctx context.Context, campaignID string) (Headline, bool, error)
	MarkHeadlineUsed(ctx context.Context, headlineID, articleID string) error
	CountHeadlines(ctx context.Context, campaignID string, status HeadlineStatus) (int, error)

	GetJob(ctx context.Context, id string) (Job, error)
	// HeadlineJob returns the campaign's most recent headlines job.
	HeadlineJob(ctx context.Context, campaignID string) (Job, bool, error)
	SaveJob(ctx context.Context, job Job) error

	ArticleExists(ctx context.Context, generationHash string) (bool, error)
	// SaveArticle stores a, making its slug unique, and returns the
	// stored record.
	SaveArticle(ctx context.Context, a StoredArticle) (StoredArticle, error)

	LogWork(ctx context.Context, e WorkEntry) error
}
