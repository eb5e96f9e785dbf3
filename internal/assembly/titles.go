package assembly

import (
	"math/rand/v2"
	"strings"

	"github.com/HendryAvila/spinforge/internal/spintax"
)

// TitlePatterns are the generated title shapes, filled with {niche},
// {city}, {state} and {site}.
var TitlePatterns = []string{
	"Top Rated {niche} Company in {city}",
	"{city} {niche} Experts - {site}",
	"The #1 {niche} Service in {city}, {state}",
	"Best {niche} Agency Serving {city}",
}

func (p *Pipeline) title(c Context) (string, int) {
	var i int
	if p.rng != nil {
		i = p.rng.IntN(len(TitlePatterns))
	} else {
		i = rand.IntN(len(TitlePatterns))
	}
	site := c.Site.Name
	if site == "" {
		site = "Official Site"
	}
	return spintax.Inject(TitlePatterns[i], spintax.Variables{
		"niche": c.Niche,
		"city":  c.City.City,
		"state": c.City.State,
		"site":  site,
	}), i
}

// MetaDescription is the search snippet for a niche/city article.
func MetaDescription(niche, city string) string {
	return "Looking for the best " + niche + " in " + city +
		"? We provide top-rated solutions tailored for your business needs. Get a free consultation today."
}

// Slugify lowercases title and collapses every run of characters outside
// [a-z0-9] into one hyphen, trimming hyphens at either end.
// Example: "The #1 Dentist Service in Austin, TX" → "the-1-dentist-service-in-austin-tx"
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
