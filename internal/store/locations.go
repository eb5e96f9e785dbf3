package store

import (
	"context"
	"fmt"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/engine"
)

// Per-mode caps on how many locations one campaign is crossed with.
const (
	maxStates   = 100
	maxCounties = 500
	maxCities   = 1000
)

// State is a row of locations_states.
type State struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// County is a row of locations_counties.
type County struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	StateID    string `yaml:"state_id"`
	Population int64  `yaml:"population"`
}

// City is a row of locations_cities.
type City struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	CountyID   string `yaml:"county_id"`
	StateID    string `yaml:"state_id"`
	Population int64  `yaml:"population"`
}

// SaveState inserts or replaces a state.
func (s *Store) SaveState(ctx context.Context, st State) error {
	_, err := s.exec(ctx, `
		INSERT INTO locations_states (id, name, code) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, code = excluded.code`,
		st.ID, st.Name, st.Code)
	if err != nil {
		return fmt.Errorf("store: save state %q: %w", st.ID, err)
	}
	return nil
}

// SaveCounty inserts or replaces a county.
func (s *Store) SaveCounty(ctx context.Context, c County) error {
	_, err := s.exec(ctx, `
		INSERT INTO locations_counties (id, name, state_id, population) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, state_id = excluded.state_id, population = excluded.population`,
		c.ID, c.Name, c.StateID, c.Population)
	if err != nil {
		return fmt.Errorf("store: save county %q: %w", c.ID, err)
	}
	return nil
}

// SaveCity inserts or replaces a city.
func (s *Store) SaveCity(ctx context.Context, c City) error {
	_, err := s.exec(ctx, `
		INSERT INTO locations_cities (id, name, county_id, state_id, population) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, county_id = excluded.county_id,
			state_id = excluded.state_id, population = excluded.population`,
		c.ID, c.Name, c.CountyID, c.StateID, c.Population)
	if err != nil {
		return fmt.Errorf("store: save city %q: %w", c.ID, err)
	}
	return nil
}

const citySelect = `
	SELECT ci.id, ci.name, COALESCE(co.name, ''), COALESCE(st.name, ''), COALESCE(st.code, ''), ci.population
	FROM locations_cities ci
	LEFT JOIN locations_counties co ON co.id = ci.county_id
	LEFT JOIN locations_states st ON st.id = ci.state_id`

// FetchLocations returns the locations a campaign mode selects:
//
//	state   all states, or the one named by target (max 100)
//	county  counties, optionally of the target state, most populous first (max 500)
//	city    cities of the target state or county, most populous first (max 1000)
func (s *Store) FetchLocations(ctx context.Context, mode engine.LocationMode, target string) ([]cartesian.Location, error) {
	switch mode {
	case engine.ModeState:
		q := `SELECT id, '', '', name, code, 0 FROM locations_states`
		var args []any
		if target != "" {
			q += ` WHERE id = ?`
			args = append(args, target)
		}
		return s.queryLocations(ctx, q+` ORDER BY name, id LIMIT ?`, append(args, maxStates)...)

	case engine.ModeCounty:
		q := `
			SELECT co.id, '', co.name, COALESCE(st.name, ''), COALESCE(st.code, ''), co.population
			FROM locations_counties co
			LEFT JOIN locations_states st ON st.id = co.state_id`
		var args []any
		if target != "" {
			q += ` WHERE co.state_id = ?`
			args = append(args, target)
		}
		return s.queryLocations(ctx, q+` ORDER BY co.population DESC, co.id LIMIT ?`, append(args, maxCounties)...)

	case engine.ModeCity:
		q := citySelect
		var args []any
		if target != "" {
			isState, err := s.count(ctx, `SELECT COUNT(*) FROM locations_states WHERE id = ?`, target)
			if err != nil {
				return nil, fmt.Errorf("store: resolve location target %q: %w", target, err)
			}
			if isState > 0 {
				q += ` WHERE ci.state_id = ?`
			} else {
				q += ` WHERE ci.county_id = ?`
			}
			args = append(args, target)
		}
		return s.queryLocations(ctx, q+` ORDER BY ci.population DESC, ci.id LIMIT ?`, append(args, maxCities)...)

	case engine.ModeNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("store: unknown location mode %q", mode)
}

// FetchCity returns a city with its county and state names.
func (s *Store) FetchCity(ctx context.Context, id string) (cartesian.Location, error) {
	row := s.queryRow(ctx, citySelect+` WHERE ci.id = ?`, id)
	var l cartesian.Location
	if err := row.Scan(&l.ID, &l.City, &l.County, &l.State, &l.StateCode, &l.Population); err != nil {
		return cartesian.Location{}, notFound(err, "city", id)
	}
	return l, nil
}

func (s *Store) queryLocations(ctx context.Context, q string, args ...any) ([]cartesian.Location, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: fetch locations: %w", err)
	}
	defer rows.Close()

	var out []cartesian.Location
	for rows.Next() {
		var l cartesian.Location
		if err := rows.Scan(&l.ID, &l.City, &l.County, &l.State, &l.StateCode, &l.Population); err != nil {
			return nil, fmt.Errorf("store: scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
