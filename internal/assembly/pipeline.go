package assembly

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/render"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// DefaultNiche is used when a context has no niche.
const DefaultNiche = "Business"

// tokenPattern matches {{NAME}} context tokens.
var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z_]+)\}\}`)

// Agency identifies who the articles are published by.
type Agency struct {
	Name string
	URL  string
}

// FailureFunc is told about blocks that could not be fetched.
type FailureFunc func(ctx context.Context, blockID string, err error)

// Pipeline assembles articles from blocks.
type Pipeline struct {
	blocks     BlockSource
	components Components
	agency     Agency
	rng        spintax.Rand
	log        *zap.Logger
	onFailure  FailureFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRand sets the spintax/title random source.
func WithRand(rng spintax.Rand) Option { return func(p *Pipeline) { p.rng = rng } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithComponents replaces the component registry.
func WithComponents(c Components) Option { return func(p *Pipeline) { p.components = c } }

// WithAgency sets the agency name/url tokens.
func WithAgency(a Agency) Option { return func(p *Pipeline) { p.agency = a } }

// WithFailureHook registers a callback for block fetch failures.
func WithFailureHook(f FailureFunc) Option { return func(p *Pipeline) { p.onFailure = f } }

// New creates a Pipeline reading blocks from src.
func New(src BlockSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		blocks:     src,
		components: DefaultComponents(),
		agency:     Agency{Name: "Spark Agency"},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Assemble builds one article. A block that cannot be fetched is rendered
// empty and reported; only context cancellation aborts the article.
func (p *Pipeline) Assemble(ctx context.Context, c Context, o Overrides) (Article, error) {
	variant := grammar.Neutral()
	if c.Variant != nil {
		variant = c.Variant.WithDefaults()
	}
	if c.Niche == "" {
		c.Niche = DefaultNiche
	}
	vars := p.variables(c)

	blocks := make([]render.Block, 0, len(c.Template.Structure))
	for _, id := range c.Template.Structure {
		if err := ctx.Err(); err != nil {
			return Article{}, err
		}
		raw, err := p.blocks.FetchBlock(ctx, id)
		if err != nil {
			p.log.Warn("block unavailable, rendering empty",
				zap.String("block", id), zap.String("template", c.Template.ID), zap.Error(err))
			if p.onFailure != nil {
				p.onFailure(ctx, id, err)
			}
			raw = Block{}
		}
		raw.ID = id
		blocks = append(blocks, p.resolveBlock(raw, vars, variant))
	}

	article := Article{
		Title:        o.Title,
		Blocks:       blocks,
		HTMLContent:  render.Article(blocks),
		MetaDesc:     MetaDescription(c.Niche, c.City.City),
		TitlePattern: -1,
	}
	if article.Title == "" {
		article.Title, article.TitlePattern = p.title(c)
	}
	article.Slug = o.Slug
	if article.Slug == "" {
		article.Slug = Slugify(article.Title)
	}
	return article, nil
}

func (p *Pipeline) resolveBlock(b Block, vars spintax.Variables, variant grammar.Variant) render.Block {
	resolve := func(s string) string { return ResolveText(s, vars, variant, p.rng) }
	resolveAll := func(items []string) []string {
		if len(items) == 0 {
			return nil
		}
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = resolve(it)
		}
		return out
	}

	out := render.Block{
		ID:          b.ID,
		Title:       resolve(b.Title),
		Hook:        resolve(b.Hook),
		Pains:       resolveAll(b.Pains),
		Solutions:   resolveAll(b.Solutions),
		ValuePoints: resolveAll(b.ValuePoints),
		CTA:         resolve(b.CTA),
	}
	if b.Content == "" {
		return out
	}

	content := resolve(b.Content)
	if b.Format == FormatMarkdown {
		html, err := render.Markdown(content)
		if err != nil {
			p.log.Warn("markdown conversion failed, keeping source", zap.String("block", b.ID), zap.Error(err))
		} else {
			content = html
		}
	}
	out.Content = p.components.Expand(content)
	return out
}

// variables returns the placeholders available to every field.
func (p *Pipeline) variables(c Context) spintax.Variables {
	ctxVars := c.City.Variables()
	ctxVars["niche"] = c.Niche
	ctxVars["site_name"] = c.Site.Name
	ctxVars["agency_name"] = p.agency.Name
	ctxVars["agency_url"] = c.Site.URL
	if ctxVars["agency_url"] == "" {
		ctxVars["agency_url"] = p.agency.URL
	}
	return spintax.Merge(c.Variables, ctxVars)
}

// ResolveText runs one field through variables, spintax and grammar, in
// that order. A nil rng uses the global random source.
func ResolveText(text string, vars spintax.Variables, variant grammar.Variant, rng spintax.Rand) string {
	if text == "" {
		return ""
	}
	text = replaceTokens(text, vars)
	text = spintax.Inject(text, vars)
	text = spintax.ResolveRandom(text, rng)
	return grammar.Resolve(text, variant)
}

// replaceTokens substitutes {{NAME}} tokens that name a variable. Other
// double-brace tokens, components included, are left for later passes.
func replaceTokens(text string, vars spintax.Variables) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if val, ok := vars.Lookup(tok[2 : len(tok)-2]); ok {
			return val
		}
		return tok
	})
}
