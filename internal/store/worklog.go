package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/HendryAvila/spinforge/internal/engine"
)

// LogWork appends an entry to the work log.
func (s *Store) LogWork(ctx context.Context, e engine.WorkEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	level := e.Level
	if level == "" {
		level = engine.LevelInfo
	}
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := s.exec(ctx, `
		INSERT INTO work_log (id, action, message, entity_type, entity_id, details, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, e.Message, e.EntityType, e.EntityID, encodeJSON(details), string(level), s.stamp(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: log work %q: %w", e.Action, err)
	}
	return nil
}

// RecentWork returns the newest work log entries.
func (s *Store) RecentWork(ctx context.Context, limit int) ([]engine.WorkEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.query(ctx, `
		SELECT id, action, message, entity_type, entity_id, details, level, created_at
		FROM work_log ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent work: %w", err)
	}
	defer rows.Close()

	var out []engine.WorkEntry
	for rows.Next() {
		var (
			e                  engine.WorkEntry
			details, level, ts string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Message, &e.EntityType, &e.EntityID, &details, &level, &ts); err != nil {
			return nil, fmt.Errorf("store: scan work entry: %w", err)
		}
		e.Level = engine.Level(level)
		e.CreatedAt = parseTime(ts)
		if err := decodeJSON(details, &e.Details); err != nil {
			return nil, fmt.Errorf("store: decode work details: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
