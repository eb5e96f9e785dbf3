package store

import (
	"context"
	"fmt"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/grammar"
)

// ─── Content blocks ──────────────────────────────────────────────────────────

// SaveBlock inserts or replaces a content block.
func (s *Store) SaveBlock(ctx context.Context, b assembly.Block) error {
	format := b.Format
	if format == "" {
		format = assembly.FormatHTML
	}
	_, err := s.exec(ctx, `
		INSERT INTO content_blocks (id, title, hook, pains, solutions, value_points, cta, content, format)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, hook = excluded.hook, pains = excluded.pains,
			solutions = excluded.solutions, value_points = excluded.value_points,
			cta = excluded.cta, content = excluded.content, format = excluded.format`,
		b.ID, b.Title, b.Hook, encodeJSON(b.Pains), encodeJSON(b.Solutions), encodeJSON(b.ValuePoints),
		b.CTA, b.Content, string(format))
	if err != nil {
		return fmt.Errorf("store: save block %q: %w", b.ID, err)
	}
	return nil
}

// FetchBlock returns a content block by id.
func (s *Store) FetchBlock(ctx context.Context, id string) (assembly.Block, error) {
	var (
		b                        assembly.Block
		pains, sols, vps, format string
	)
	err := s.queryRow(ctx, `
		SELECT id, title, hook, pains, solutions, value_points, cta, content, format
		FROM content_blocks WHERE id = ?`, id,
	).Scan(&b.ID, &b.Title, &b.Hook, &pains, &sols, &vps, &b.CTA, &b.Content, &format)
	if err != nil {
		return assembly.Block{}, notFound(err, "block", id)
	}
	b.Format = assembly.Format(format)
	for _, f := range []struct {
		raw string
		dst *[]string
	}{{pains, &b.Pains}, {sols, &b.Solutions}, {vps, &b.ValuePoints}} {
		if err := decodeJSON(f.raw, f.dst); err != nil {
			return assembly.Block{}, fmt.Errorf("store: decode block %q: %w", id, err)
		}
	}
	return b, nil
}

// ─── Templates ───────────────────────────────────────────────────────────────

// SaveTemplate inserts or replaces an article template.
func (s *Store) SaveTemplate(ctx context.Context, t assembly.Template) error {
	_, err := s.exec(ctx, `
		INSERT INTO article_templates (id, name, structure) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, structure = excluded.structure`,
		t.ID, t.Name, encodeJSON(t.Structure))
	if err != nil {
		return fmt.Errorf("store: save template %q: %w", t.ID, err)
	}
	return nil
}

// FetchTemplate returns an article template by id.
func (s *Store) FetchTemplate(ctx context.Context, id string) (assembly.Template, error) {
	var (
		t   assembly.Template
		raw string
	)
	err := s.queryRow(ctx, `SELECT id, name, structure FROM article_templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &raw)
	if err != nil {
		return assembly.Template{}, notFound(err, "template", id)
	}
	if err := decodeJSON(raw, &t.Structure); err != nil {
		return assembly.Template{}, fmt.Errorf("store: decode template %q: %w", id, err)
	}
	return t, nil
}

// ─── Avatars ─────────────────────────────────────────────────────────────────

// SaveAvatar inserts or replaces an avatar.
func (s *Store) SaveAvatar(ctx context.Context, a engine.Avatar) error {
	_, err := s.exec(ctx, `
		INSERT INTO avatars (id, name, business_niches) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, business_niches = excluded.business_niches`,
		a.ID, a.Name, encodeJSON(a.BusinessNiches))
	if err != nil {
		return fmt.Errorf("store: save avatar %q: %w", a.ID, err)
	}
	return nil
}

// FetchAvatar returns an avatar by id.
func (s *Store) FetchAvatar(ctx context.Context, id string) (engine.Avatar, error) {
	row := s.queryRow(ctx, `SELECT id, name, business_niches FROM avatars WHERE id = ?`, id)
	a, err := scanAvatar(row)
	if err != nil {
		return engine.Avatar{}, notFound(err, "avatar", id)
	}
	return a, nil
}

// ListAvatars returns every avatar ordered by id.
func (s *Store) ListAvatars(ctx context.Context) ([]engine.Avatar, error) {
	rows, err := s.query(ctx, `SELECT id, name, business_niches FROM avatars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list avatars: %w", err)
	}
	defer rows.Close()

	var out []engine.Avatar
	for rows.Next() {
		a, err := scanAvatar(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan avatar: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAvatar(sc scanner) (engine.Avatar, error) {
	var (
		a   engine.Avatar
		raw string
	)
	if err := sc.Scan(&a.ID, &a.Name, &raw); err != nil {
		return engine.Avatar{}, err
	}
	return a, decodeJSON(raw, &a.BusinessNiches)
}

// SaveVariant stores the grammar variant key of an avatar.
func (s *Store) SaveVariant(ctx context.Context, avatarID, key string, v grammar.Variant) error {
	_, err := s.exec(ctx, `
		INSERT INTO avatar_variants (avatar_id, variant_key, data) VALUES (?, ?, ?)
		ON CONFLICT (avatar_id, variant_key) DO UPDATE SET data = excluded.data`,
		avatarID, key, encodeJSON(grammar.NewVariant(v)))
	if err != nil {
		return fmt.Errorf("store: save variant %s/%s: %w", avatarID, key, err)
	}
	return nil
}

// FetchVariant returns one grammar variant of an avatar.
func (s *Store) FetchVariant(ctx context.Context, avatarID, key string) (grammar.Variant, error) {
	var raw string
	err := s.queryRow(ctx, `SELECT data FROM avatar_variants WHERE avatar_id = ? AND variant_key = ?`,
		avatarID, key).Scan(&raw)
	if err != nil {
		return nil, notFound(err, "variant", avatarID+"/"+key)
	}
	fields := map[string]string{}
	if err := decodeJSON(raw, &fields); err != nil {
		return nil, fmt.Errorf("store: decode variant %s/%s: %w", avatarID, key, err)
	}
	return grammar.NewVariant(fields), nil
}
