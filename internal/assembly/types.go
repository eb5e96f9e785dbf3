// Package assembly resolves a template's content blocks into one article.
//
// Every textual field goes through the same fixed sequence:
//
//  1. variables   {{NICHE}} context tokens, then {name} placeholders
//  2. spintax     one random path through {a|b} groups, nested or not
//  3. grammar     [[TOKEN]] agreement and function tokens
//
// Free content then has its {{COMPONENT_*}} tokens replaced with
// generated markup. Inserted markup is never resolved again.
package assembly

import (
	"context"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/render"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// Format is the markup language of a block's free content.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Block is a raw content block as stored upstream, before resolution.
type Block struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Hook        string   `json:"hook,omitempty" yaml:"hook,omitempty"`
	Pains       []string `json:"pains,omitempty" yaml:"pains,omitempty"`
	Solutions   []string `json:"solutions,omitempty" yaml:"solutions,omitempty"`
	ValuePoints []string `json:"value_points,omitempty" yaml:"value_points,omitempty"`
	CTA         string   `json:"cta,omitempty" yaml:"cta,omitempty"`
	Content     string   `json:"content,omitempty" yaml:"content,omitempty"`
	Format      Format   `json:"format,omitempty" yaml:"format,omitempty"`
}

// ResolvedBlock is a block after every field went through resolution.
type ResolvedBlock = render.Block

// BlockSource fetches raw blocks by id.
type BlockSource interface {
	FetchBlock(ctx context.Context, id string) (Block, error)
}

// Template is an ordered list of block ids.
type Template struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Structure []string `json:"structure" yaml:"structure"`
}

// Site is the publishing target an article is written for.
type Site struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Context is everything one article is personalized with.
type Context struct {
	AvatarID string
	Variant  grammar.Variant
	Niche    string
	City     cartesian.Location
	Site     Site
	Template Template
	// Variables are extra {name} placeholders; context values win on
	// collision.
	Variables spintax.Variables
}

// Overrides replace generated metadata.
type Overrides struct {
	Title string
	Slug  string
}

// Article is the assembled output.
type Article struct {
	Title       string          `json:"title"`
	HTMLContent string          `json:"html_content"`
	Slug        string          `json:"slug"`
	MetaDesc    string          `json:"meta_desc"`
	Blocks      []ResolvedBlock `json:"blocks,omitempty"`
	// TitlePattern is the index of the generated title pattern, or -1
	// when the title came from an override.
	TitlePattern int `json:"-"`
}
