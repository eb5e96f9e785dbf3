package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// Defaults applied when a request leaves a bound at zero.
const (
	DefaultMaxCombinations = 10000
	DefaultBatchSize       = 500
	DefaultPreviewCount    = 5
	DefaultArticleBatch    = 5
)

// Limits bounds the work a single call does.
type Limits struct {
	MaxCombinations int64
	BatchSize       int
	PreviewCount    int
	ArticleBatch    int
}

func (l Limits) withDefaults() Limits {
	if l.MaxCombinations <= 0 {
		l.MaxCombinations = DefaultMaxCombinations
	}
	if l.BatchSize <= 0 {
		l.BatchSize = DefaultBatchSize
	}
	if l.PreviewCount <= 0 {
		l.PreviewCount = DefaultPreviewCount
	}
	if l.ArticleBatch <= 0 {
		l.ArticleBatch = DefaultArticleBatch
	}
	return l
}

// Engine runs generation against a data source and sink. Calls share no
// mutable state beyond the random source, so an Engine may serve several
// campaigns one call at a time.
type Engine struct {
	src      Source
	lib      Library
	sink     Sink
	pipeline *assembly.Pipeline
	limits   Limits
	rng      spintax.Rand
	log      *zap.Logger
	now      func() time.Time

	pipelineOpts []assembly.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithLimits overrides the default bounds.
func WithLimits(l Limits) Option { return func(e *Engine) { e.limits = l } }

// WithRand sets the random source for previews, titles and spintax.
func WithRand(rng spintax.Rand) Option { return func(e *Engine) { e.rng = rng } }

// WithAssemblyOptions passes options through to the article pipeline.
func WithAssemblyOptions(opts ...assembly.Option) Option {
	return func(e *Engine) { e.pipelineOpts = append(e.pipelineOpts, opts...) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New creates an Engine.
func New(src Source, lib Library, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		src:  src,
		lib:  lib,
		sink: sink,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.limits = e.limits.withDefaults()

	popts := []assembly.Option{
		assembly.WithLogger(e.log),
		assembly.WithFailureHook(e.blockFailed),
	}
	if e.rng != nil {
		popts = append(popts, assembly.WithRand(e.rng))
	}
	e.pipeline = assembly.New(src, append(popts, e.pipelineOpts...)...)
	return e
}

// Limits returns the effective bounds.
func (e *Engine) Limits() Limits { return e.limits }

func (e *Engine) blockFailed(ctx context.Context, blockID string, err error) {
	e.work(ctx, WorkEntry{
		Action:     "block_fetch_failed",
		Message:    "Content block unavailable, rendered empty",
		EntityType: "content_block",
		EntityID:   blockID,
		Details:    map[string]any{"error": err.Error()},
		Level:      LevelWarning,
	})
}

// work writes a work log entry. Failures are logged and dropped.
func (e *Engine) work(ctx context.Context, entry WorkEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = e.now().UTC()
	}
	if err := e.sink.LogWork(ctx, entry); err != nil {
		e.log.Warn("work log write failed",
			zap.String("action", entry.Action), zap.Error(err))
	}
}
