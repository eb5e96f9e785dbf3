package cartesian

import "github.com/HendryAvila/spinforge/internal/spintax"

// Metadata describes a product space before (or instead of) generating it.
type Metadata struct {
	Template                  string `json:"template"`
	SlotCount                 int    `json:"slotCount"`
	TotalSpintaxCombinations  int64  `json:"totalSpintaxCombinations"`
	LocationCount             int    `json:"locationCount"`
	TotalPossibleCombinations int64  `json:"totalPossibleCombinations"`
	// GeneratedCount is how many results the window will yield.
	GeneratedCount int64 `json:"generatedCount"`
	// WasTruncated is set whenever the true total exceeds the window's
	// limit, including when the total saturated at MaxTotal.
	WasTruncated bool `json:"wasTruncated"`
	// Saturated reports that a count hit MaxTotal and was clamped.
	Saturated bool `json:"saturated"`
}

// Describe computes the metadata of template crossed with locationCount
// locations, as seen through w.
func Describe(template string, locationCount int, w Window) Metadata {
	slots := spintax.Extract(template)
	spin, _ := Count(slots, 1)
	total, saturated := Count(slots, locationCount)
	start, end := w.bounds(total)

	return Metadata{
		Template:                  template,
		SlotCount:                 len(slots),
		TotalSpintaxCombinations:  spin,
		LocationCount:             locationCount,
		TotalPossibleCombinations: total,
		GeneratedCount:            end - start,
		WasTruncated:              saturated || (w.Limit > 0 && total > w.Limit),
		Saturated:                 saturated,
	}
}
