// Package store is the SQL implementation of the engine's data ports.
//
// SQLite (modernc.org/sqlite, pure Go) is the default and lives in the
// data directory. A postgres:// database URL switches to Postgres through
// the pgx stdlib driver. Queries are written once with ? placeholders and
// rebound per dialect, so every statement here must stay portable.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned for missing records. It is engine.ErrNotFound,
// so callers on either side can match it with errors.Is.
var ErrNotFound = engine.ErrNotFound

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	// DataDir holds spinforge.db when DatabaseURL is empty.
	DataDir string
	// DatabaseURL selects Postgres (postgres:// or postgresql://) or an
	// explicit SQLite file (sqlite://path).
	DatabaseURL string
	// CacheSize bounds CachedSource; zero means DefaultCacheSize.
	CacheSize int
	// CacheTTL is how long CachedSource keeps an entry; zero or less
	// keeps it until evicted or purged.
	CacheTTL time.Duration
}

const (
	// DefaultCacheSize is the number of entries CachedSource keeps per kind.
	DefaultCacheSize = 1024
	// DefaultCacheTTL bounds how stale a cached block or variant can be
	// after another process rewrites it.
	DefaultCacheTTL = 5 * time.Minute
)

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:   filepath.Join(home, ".spinforge"),
		CacheSize: DefaultCacheSize,
		CacheTTL:  DefaultCacheTTL,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store implements engine.Source, engine.Library and engine.Sink.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

var (
	_ engine.Source  = (*Store)(nil)
	_ engine.Library = (*Store)(nil)
	_ engine.Sink    = (*Store)(nil)
)

// New opens the database selected by cfg and runs migrations.
func New(cfg Config) (*Store, error) {
	driver, dsn, d, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if d == dialectSQLite {
		// One connection keeps the pragmas in force for every query.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA foreign_keys = ON",
		}
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("store: pragma %q: %w", p, err)
			}
		}
	} else if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	s := &Store{db: db, dialect: d, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func resolveDSN(cfg Config) (driver, dsn string, d dialect, err error) {
	url := strings.TrimSpace(cfg.DatabaseURL)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, dialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return "", "", 0, fmt.Errorf("store: create data dir: %w", err)
		}
		return "sqlite", path, dialectSQLite, nil
	case url != "":
		return "", "", 0, fmt.Errorf("store: unsupported database url %q", url)
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return "", "", 0, fmt.Errorf("store: create data dir: %w", err)
	}
	return "sqlite", filepath.Join(cfg.DataDir, "spinforge.db"), dialectSQLite, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL DEFAULT '',
			headline_template TEXT NOT NULL DEFAULT '',
			location_mode     TEXT NOT NULL DEFAULT 'none',
			location_target   TEXT NOT NULL DEFAULT '',
			niche_variables   TEXT NOT NULL DEFAULT '{}',
			template_id       TEXT NOT NULL DEFAULT '',
			site_name         TEXT NOT NULL DEFAULT '',
			site_url          TEXT NOT NULL DEFAULT '',
			variant_key       TEXT NOT NULL DEFAULT '',
			created_at        TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS locations_states (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS locations_counties (
			id         TEXT PRIMARY KEY,
			name       TEXT   NOT NULL,
			state_id   TEXT   NOT NULL DEFAULT '',
			population BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_counties_state ON locations_counties(state_id)`,
		`CREATE TABLE IF NOT EXISTS locations_cities (
			id         TEXT PRIMARY KEY,
			name       TEXT   NOT NULL,
			county_id  TEXT   NOT NULL DEFAULT '',
			state_id   TEXT   NOT NULL DEFAULT '',
			population BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_state  ON locations_cities(state_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_county ON locations_cities(county_id)`,

		`CREATE TABLE IF NOT EXISTS content_blocks (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL DEFAULT '',
			hook         TEXT NOT NULL DEFAULT '',
			pains        TEXT NOT NULL DEFAULT '[]',
			solutions    TEXT NOT NULL DEFAULT '[]',
			value_points TEXT NOT NULL DEFAULT '[]',
			cta          TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			format       TEXT NOT NULL DEFAULT 'html'
		)`,
		`CREATE TABLE IF NOT EXISTS article_templates (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL DEFAULT '',
			structure TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS avatars (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL DEFAULT '',
			business_niches TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS avatar_variants (
			avatar_id   TEXT NOT NULL,
			variant_key TEXT NOT NULL,
			data        TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (avatar_id, variant_key)
		)`,

		`CREATE TABLE IF NOT EXISTS headline_inventory (
			id               TEXT PRIMARY KEY,
			campaign_id      TEXT NOT NULL,
			final_title_text TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'available',
			location_data    TEXT,
			used_on_article  TEXT NOT NULL DEFAULT '',
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_headlines_campaign ON headline_inventory(campaign_id, status)`,

		`CREATE TABLE IF NOT EXISTS generation_jobs (
			id              TEXT PRIMARY KEY,
			campaign_id     TEXT   NOT NULL,
			kind            TEXT   NOT NULL,
			target_quantity BIGINT NOT NULL DEFAULT 0,
			current_offset  BIGINT NOT NULL DEFAULT 0,
			status          TEXT   NOT NULL DEFAULT 'pending',
			avatar_ids      TEXT   NOT NULL DEFAULT '[]',
			template_id     TEXT   NOT NULL DEFAULT '',
			created_at      TEXT   NOT NULL,
			updated_at      TEXT   NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_campaign ON generation_jobs(campaign_id, kind)`,

		`CREATE TABLE IF NOT EXISTS work_log (
			id          TEXT PRIMARY KEY,
			action      TEXT NOT NULL,
			message     TEXT NOT NULL DEFAULT '',
			entity_type TEXT NOT NULL DEFAULT '',
			entity_id   TEXT NOT NULL DEFAULT '',
			details     TEXT NOT NULL DEFAULT '{}',
			level       TEXT NOT NULL DEFAULT 'info',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_work_created ON work_log(created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS generated_articles (
			id              TEXT PRIMARY KEY,
			campaign_id     TEXT NOT NULL DEFAULT '',
			job_id          TEXT NOT NULL DEFAULT '',
			title           TEXT NOT NULL,
			slug            TEXT NOT NULL UNIQUE,
			html_content    TEXT NOT NULL DEFAULT '',
			meta_desc       TEXT NOT NULL DEFAULT '',
			location_city   TEXT NOT NULL DEFAULT '',
			location_county TEXT NOT NULL DEFAULT '',
			location_state  TEXT NOT NULL DEFAULT '',
			avatar_id       TEXT NOT NULL DEFAULT '',
			niche           TEXT NOT NULL DEFAULT '',
			generation_hash TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_hash     ON generated_articles(generation_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_campaign ON generated_articles(campaign_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ─── Query helpers ───────────────────────────────────────────────────────────

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.queryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *Store) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

// stamp is formatTime with a zero time meaning now.
func (s *Store) stamp(t time.Time) string {
	if t.IsZero() {
		return s.timestamp()
	}
	return formatTime(t)
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func decodeJSON(raw string, v any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

// notFound maps sql.ErrNoRows to ErrNotFound with context.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: %s %q: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("store: %s %q: %w", what, id, err)
}
