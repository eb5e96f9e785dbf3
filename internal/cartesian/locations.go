package cartesian

import (
	"iter"
	"strconv"

	"github.com/HendryAvila/spinforge/internal/spintax"
)

// Location is one geographic unit crossed with the spintax space.
type Location struct {
	ID         string `json:"id" yaml:"id"`
	City       string `json:"city,omitempty" yaml:"city,omitempty"`
	County     string `json:"county,omitempty" yaml:"county,omitempty"`
	State      string `json:"state,omitempty" yaml:"state,omitempty"`
	StateCode  string `json:"stateCode,omitempty" yaml:"state_code,omitempty"`
	Population int64  `json:"population,omitempty" yaml:"population,omitempty"`
}

// LocationRef is the location attached to a generated result.
type LocationRef struct {
	ID        string `json:"id,omitempty"`
	City      string `json:"city,omitempty"`
	County    string `json:"county,omitempty"`
	State     string `json:"state,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// Ref returns the reference stored with results for l.
func (l Location) Ref() *LocationRef {
	return &LocationRef{ID: l.ID, City: l.City, County: l.County, State: l.State, StateCode: l.StateCode}
}

// Variables returns the placeholders a location contributes. Absent
// fields map to the empty string so {county} never survives for a city
// without one.
func (l Location) Variables() spintax.Variables {
	pop := ""
	if l.Population > 0 {
		pop = strconv.FormatInt(l.Population, 10)
	}
	return spintax.Variables{
		"city":       l.City,
		"county":     l.County,
		"state":      l.State,
		"state_code": l.StateCode,
		"population": pop,
	}
}

// WithLocations yields the full product locations × spintax(template)
// inside w. The location is the most significant digit: every spintax
// combination is produced for one location before moving to the next.
// Location variables are merged over niche and take precedence on
// collision. With no locations this is Product with niche injection.
func WithLocations(template string, locations []Location, niche spintax.Variables, w Window) iter.Seq[Result] {
	slots := spintax.Extract(template)
	if len(locations) == 0 {
		return func(yield func(Result) bool) {
			for r := range Product(template, slots, w) {
				r.Text = spintax.Inject(r.Text, niche)
				if !yield(r) {
					return
				}
			}
		}
	}

	return func(yield func(Result) bool) {
		d := newDecoder(slots)
		spin := d.total
		total, _ := Count(slots, len(locations))
		start, end := w.bounds(total)

		current := -1
		var vars spintax.Variables
		for g := start; g < end; g++ {
			loc := int(g / spin)
			if loc != current {
				current = loc
				vars = spintax.Merge(niche, locations[loc].Variables())
			}
			text, values := d.render(template, g%spin)
			r := Result{
				Text:       spintax.Inject(text, vars),
				SlotValues: values,
				Index:      g,
				Location:   locations[loc].Ref(),
			}
			if !yield(r) {
				return
			}
		}
	}
}
