// Package seed imports YAML fixture files into the store.
//
// A fixture lists any of: states, counties, cities, blocks, templates,
// avatars (with their grammar variants), campaigns and jobs. Records are
// upserted in dependency order, so a fixture can be applied repeatedly.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/store"
)

//go:embed demo.yaml
var demo []byte

// Fixture is the decoded content of a seed file.
type Fixture struct {
	States    []store.State       `yaml:"states"`
	Counties  []store.County      `yaml:"counties"`
	Cities    []store.City        `yaml:"cities"`
	Blocks    []assembly.Block    `yaml:"blocks"`
	Templates []assembly.Template `yaml:"templates"`
	Avatars   []Avatar            `yaml:"avatars"`
	Campaigns []engine.Campaign   `yaml:"campaigns"`
	Jobs      []Job               `yaml:"jobs"`
}

// Avatar is an avatar with its variants keyed by variant name.
type Avatar struct {
	engine.Avatar `yaml:",inline"`
	Variants      map[string]map[string]string `yaml:"variants"`
}

// Job is a generation job to create.
type Job struct {
	ID             string   `yaml:"id"`
	CampaignID     string   `yaml:"campaign_id"`
	Kind           string   `yaml:"kind"`
	TargetQuantity int64    `yaml:"target_quantity"`
	AvatarIDs      []string `yaml:"avatar_ids"`
	TemplateID     string   `yaml:"template_id"`
}

var validKinds = map[engine.JobKind]bool{
	engine.JobHeadlines: true,
	engine.JobArticles:  true,
}

// Writer is the store surface a fixture is written to.
type Writer interface {
	SaveState(ctx context.Context, st store.State) error
	SaveCounty(ctx context.Context, c store.County) error
	SaveCity(ctx context.Context, c store.City) error
	SaveBlock(ctx context.Context, b assembly.Block) error
	SaveTemplate(ctx context.Context, t assembly.Template) error
	SaveAvatar(ctx context.Context, a engine.Avatar) error
	SaveVariant(ctx context.Context, avatarID, key string, v grammar.Variant) error
	SaveCampaign(ctx context.Context, c engine.Campaign) error
	GetJob(ctx context.Context, id string) (engine.Job, error)
	CreateJob(ctx context.Context, j engine.Job) (engine.Job, error)
}

var _ Writer = (*store.Store)(nil)

// Summary counts what Apply wrote.
type Summary struct {
	Locations int `json:"locations"`
	Blocks    int `json:"blocks"`
	Templates int `json:"templates"`
	Avatars   int `json:"avatars"`
	Variants  int `json:"variants"`
	Campaigns int `json:"campaigns"`
	Jobs      int `json:"jobs"`
}

// Decode parses and validates a fixture.
func Decode(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// LoadFile decodes the fixture at path.
func LoadFile(path string) (Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer file.Close()
	return Decode(file)
}

// Demo returns the bundled demo fixture.
func Demo() (Fixture, error) {
	return Decode(bytes.NewReader(demo))
}

// Validate checks required ids and enum values.
func (f Fixture) Validate() error {
	for i, b := range f.Blocks {
		if b.ID == "" {
			return fmt.Errorf("seed: blocks[%d]: id is required", i)
		}
		switch b.Format {
		case "", assembly.FormatHTML, assembly.FormatMarkdown:
		default:
			return fmt.Errorf("seed: block %q: invalid format %q: must be one of: html, markdown", b.ID, b.Format)
		}
	}
	for i, t := range f.Templates {
		if t.ID == "" {
			return fmt.Errorf("seed: templates[%d]: id is required", i)
		}
	}
	for i, a := range f.Avatars {
		if a.ID == "" {
			return fmt.Errorf("seed: avatars[%d]: id is required", i)
		}
	}
	for i, c := range f.Campaigns {
		if c.ID == "" {
			return fmt.Errorf("seed: campaigns[%d]: id is required", i)
		}
		if _, err := engine.ParseLocationMode(string(c.LocationMode)); err != nil {
			return fmt.Errorf("seed: campaign %q: %w", c.ID, err)
		}
	}
	for i, j := range f.Jobs {
		if j.CampaignID == "" {
			return fmt.Errorf("seed: jobs[%d]: campaign_id is required", i)
		}
		if !validKinds[engine.JobKind(j.Kind)] {
			return fmt.Errorf("seed: jobs[%d]: invalid kind %q: must be one of: headlines, articles", i, j.Kind)
		}
	}
	return nil
}

// Apply writes f to w. Jobs with an id that already exists are left
// untouched so re-seeding never rewinds progress.
func Apply(ctx context.Context, w Writer, f Fixture) (Summary, error) {
	var sum Summary

	for _, st := range f.States {
		if err := w.SaveState(ctx, st); err != nil {
			return sum, err
		}
		sum.Locations++
	}
	for _, c := range f.Counties {
		if err := w.SaveCounty(ctx, c); err != nil {
			return sum, err
		}
		sum.Locations++
	}
	for _, c := range f.Cities {
		if err := w.SaveCity(ctx, c); err != nil {
			return sum, err
		}
		sum.Locations++
	}

	for _, b := range f.Blocks {
		if err := w.SaveBlock(ctx, b); err != nil {
			return sum, err
		}
		sum.Blocks++
	}
	for _, t := range f.Templates {
		if err := w.SaveTemplate(ctx, t); err != nil {
			return sum, err
		}
		sum.Templates++
	}

	for _, a := range f.Avatars {
		if err := w.SaveAvatar(ctx, a.Avatar); err != nil {
			return sum, err
		}
		sum.Avatars++
		for key, fields := range a.Variants {
			if err := w.SaveVariant(ctx, a.ID, key, grammar.NewVariant(fields)); err != nil {
				return sum, err
			}
			sum.Variants++
		}
	}

	for _, c := range f.Campaigns {
		if err := w.SaveCampaign(ctx, c); err != nil {
			return sum, err
		}
		sum.Campaigns++
	}

	for _, j := range f.Jobs {
		if j.ID != "" {
			if _, err := w.GetJob(ctx, j.ID); err == nil {
				continue
			}
		}
		_, err := w.CreateJob(ctx, engine.Job{
			ID:             j.ID,
			CampaignID:     j.CampaignID,
			Kind:           engine.JobKind(j.Kind),
			TargetQuantity: j.TargetQuantity,
			AvatarIDs:      j.AvatarIDs,
			TemplateID:     j.TemplateID,
		})
		if err != nil {
			return sum, err
		}
		sum.Jobs++
	}
	return sum, nil
}
