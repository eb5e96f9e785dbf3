package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/HendryAvila/spinforge/internal/engine"
)

const jobColumns = `id, campaign_id, kind, target_quantity, current_offset, status,
	avatar_ids, template_id, created_at, updated_at`

// CreateJob stores a new pending job and returns it with its id.
func (s *Store) CreateJob(ctx context.Context, j engine.Job) (engine.Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = engine.JobPending
	}
	now := s.now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	_, err := s.exec(ctx, `INSERT INTO generation_jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CampaignID, string(j.Kind), j.TargetQuantity, j.CurrentOffset, string(j.Status),
		encodeJSON(j.AvatarIDs), j.TemplateID, formatTime(now), formatTime(now))
	if err != nil {
		return engine.Job{}, fmt.Errorf("store: create job: %w", err)
	}
	return j, nil
}

// GetJob returns a job by id.
func (s *Store) GetJob(ctx context.Context, id string) (engine.Job, error) {
	j, err := scanJob(s.queryRow(ctx, `SELECT `+jobColumns+` FROM generation_jobs WHERE id = ?`, id))
	if err != nil {
		return engine.Job{}, notFound(err, "job", id)
	}
	return j, nil
}

// HeadlineJob returns the most recent headlines job of a campaign.
func (s *Store) HeadlineJob(ctx context.Context, campaignID string) (engine.Job, bool, error) {
	j, err := scanJob(s.queryRow(ctx, `
		SELECT `+jobColumns+` FROM generation_jobs
		WHERE campaign_id = ? AND kind = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, campaignID, string(engine.JobHeadlines)))
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Job{}, false, nil
	}
	if err != nil {
		return engine.Job{}, false, fmt.Errorf("store: headline job of %q: %w", campaignID, err)
	}
	return j, true, nil
}

// SaveJob updates a job's progress.
func (s *Store) SaveJob(ctx context.Context, j engine.Job) error {
	res, err := s.exec(ctx, `
		UPDATE generation_jobs
		SET current_offset = ?, status = ?, target_quantity = ?, avatar_ids = ?, template_id = ?, updated_at = ?
		WHERE id = ?`,
		j.CurrentOffset, string(j.Status), j.TargetQuantity, encodeJSON(j.AvatarIDs), j.TemplateID,
		s.stamp(j.UpdatedAt), j.ID)
	if err != nil {
		return fmt.Errorf("store: save job %q: %w", j.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: job %q: %w", j.ID, ErrNotFound)
	}
	return nil
}

// ListJobs returns the jobs of a campaign, newest first. An empty
// campaign id lists every job.
func (s *Store) ListJobs(ctx context.Context, campaignID string) ([]engine.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM generation_jobs`
	var args []any
	if campaignID != "" {
		q += ` WHERE campaign_id = ?`
		args = append(args, campaignID)
	}
	rows, err := s.query(ctx, q+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list jobs: %w", err)
	}
	defer rows.Close()

	var out []engine.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(sc scanner) (engine.Job, error) {
	var (
		j                                   engine.Job
		kind, status, ids, created, updated string
	)
	if err := sc.Scan(&j.ID, &j.CampaignID, &kind, &j.TargetQuantity, &j.CurrentOffset, &status,
		&ids, &j.TemplateID, &created, &updated); err != nil {
		return engine.Job{}, err
	}
	j.Kind = engine.JobKind(kind)
	j.Status = engine.JobStatus(status)
	j.CreatedAt = parseTime(created)
	j.UpdatedAt = parseTime(updated)
	return j, decodeJSON(ids, &j.AvatarIDs)
}
