// Package server wires all spinforge components and creates the MCP server.
//
// This is the composition root: it opens the store, wraps it in the read
// cache, builds the engine and injects them into the tools, prompts and
// resources. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/config"
	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/logging"
	"github.com/HendryAvila/spinforge/internal/prompts"
	"github.com/HendryAvila/spinforge/internal/resources"
	"github.com/HendryAvila/spinforge/internal/seed"
	"github.com/HendryAvila/spinforge/internal/store"
	"github.com/HendryAvila/spinforge/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// App holds the shared dependencies of the server and the CLI commands.
type App struct {
	Store  *store.Store
	Cache  *store.CachedSource
	Engine *engine.Engine
	Log    *zap.Logger
}

// Open creates the store, cache and engine described by cfg. The caller
// must Close the returned App.
func Open(cfg config.Config, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	cache := store.NewCachedSource(st, cfg.Store.CacheSize, cfg.Store.CacheTTL)

	eng := engine.New(cache, cache, st,
		engine.WithLogger(log),
		engine.WithLimits(cfg.Limits()),
		engine.WithAssemblyOptions(agencyOptions(cfg.Agency)...),
	)
	return &App{Store: st, Cache: cache, Engine: eng, Log: log}, nil
}

func agencyOptions(a config.AgencyConfig) []assembly.Option {
	if a.Name == "" && a.URL == "" {
		return nil
	}
	return []assembly.Option{assembly.WithAgency(assembly.Agency{Name: a.Name, URL: a.URL})}
}

// Seed applies a fixture and drops cached blocks and variants so the
// engine reads the new content.
func (a *App) Seed(ctx context.Context, f seed.Fixture) (seed.Summary, error) {
	sum, err := seed.Apply(ctx, a.Store, f)
	a.Cache.Purge()
	return sum, err
}

// Close releases the database connection.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Log.Warn("store close failed", zap.Error(err))
	}
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the database connection and must
// be called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	app, err := Open(cfg, log)
	if err != nil {
		return nil, noop, err
	}
	return NewWithApp(app), app.Close, nil
}

// NewWithApp registers everything against an already opened App.
func NewWithApp(app *App) *server.MCPServer {
	s := server.NewMCPServer(
		"spinforge",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Combinatorial tools ---

	countTool := tools.NewCountTool(app.Engine)
	s.AddTool(countTool.Definition(), countTool.Handle)

	previewTool := tools.NewPreviewTool(app.Engine)
	s.AddTool(previewTool.Definition(), previewTool.Handle)

	generateTool := tools.NewGenerateTool(app.Engine)
	s.AddTool(generateTool.Definition(), generateTool.Handle)

	inventoryTool := tools.NewInventoryTool(app.Store)
	s.AddTool(inventoryTool.Definition(), inventoryTool.Handle)

	// --- Article tools ---

	assembleTool := tools.NewAssembleTool(app.Engine)
	s.AddTool(assembleTool.Definition(), assembleTool.Handle)

	jobTool := tools.NewArticleJobTool(app.Engine)
	s.AddTool(jobTool.Definition(), jobTool.Handle)

	// --- Prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(app.Store)
	s.AddResource(resourceHandler.CampaignsResource(), resourceHandler.HandleCampaigns)

	return s
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// serverInstructions tells the host how to drive spinforge.
func serverInstructions() string {
	return `You have access to spinforge, a combinatorial content generator.

## CONCEPTS

- A **template** uses spintax: {Best|Top|Trusted} marks alternatives, {city} is a placeholder.
- A **campaign** crosses its headline template with a location table (state, county or city).
- Every combination has a stable global index, so large spaces are generated in slices.

## WORKFLOW

1. Read spinforge://campaigns to see campaigns, inventory counts and job offsets.
2. Use cartesian_count before generating; totals can be very large.
3. Use cartesian_preview to show the user a few random samples.
4. Run cartesian_generate and repeat with offset=nextOffset until done is true.
   Already stored headlines are skipped, so repeating a slice is safe.
5. Use article_assemble for a single article, or article_job_run to work
   through an articles job batch by batch until completed is true.

## RULES

- Never invent campaign, template, avatar or job ids; read them from spinforge://campaigns or ask.
- Report counts from tool results exactly. Do not extrapolate.`
}
