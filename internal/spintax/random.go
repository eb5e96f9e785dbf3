package spintax

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Rand is the subset of *rand.Rand used for option selection.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Placeholders for pipe-free groups while an enclosing group is resolved.
// Private-use runes never appear in campaign text.
const (
	holdOpen  = "\uE000"
	holdClose = "\uE001"
)

// ResolveRandom replaces every pipe-bearing group in text with one
// uniformly chosen option, innermost first, until none remain. Pipe-free
// groups such as {city} come back untouched, even when nested inside a
// spintax group. A nil rng uses the global source.
func ResolveRandom(text string, rng Rand) string {
	if text == "" {
		return ""
	}
	if rng == nil {
		rng = globalRand{}
	}

	var held []string
	for groupPattern.MatchString(text) {
		text = groupPattern.ReplaceAllStringFunc(text, func(group string) string {
			content := group[1 : len(group)-1]
			if !strings.Contains(content, "|") {
				held = append(held, group)
				return holdOpen + strconv.Itoa(len(held)-1) + holdClose
			}
			options := splitOptions(content)
			return options[rng.IntN(len(options))]
		})
	}

	// Restore newest first: a later hold may wrap an earlier one.
	for i := len(held) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, holdOpen+strconv.Itoa(i)+holdClose, held[i])
	}
	return text
}
