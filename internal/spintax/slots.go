// Package spintax parses and resolves {a|b|c} text alternatives.
//
// Two resolution modes exist and are intentionally kept apart:
//   - Extract finds innermost pipe-bearing groups for bulk enumeration.
//     Nesting is not expanded: in "{A|B {C|D}}" only "{C|D}" is a slot
//     and the outer braces stay literal text.
//   - ResolveRandom picks one random path through arbitrarily nested
//     groups, iterating until no pipe-bearing group remains.
//
// Brace groups without a pipe are variable placeholders ({city}) and are
// never treated as spintax by either mode.
package spintax

import (
	"regexp"
	"strings"
)

// groupPattern matches an innermost brace group: braces with no nested
// braces inside and at least one character of content.
var groupPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Slot is one pipe-bearing group found in a template.
type Slot struct {
	// Original is the matched text including braces.
	Original string `json:"original"`
	// Options are the pipe-split, trimmed alternatives (always >= 2).
	Options []string `json:"options"`
	// Position is the slot's ordinal among slots, by first appearance.
	Position int `json:"position"`
	// Start and End are byte offsets of Original within the template.
	Start int `json:"startIndex"`
	End   int `json:"endIndex"`
}

// Extract returns the spintax slots of text ordered by first appearance.
// Unbalanced braces never match and remain literal.
func Extract(text string) []Slot {
	var slots []Slot
	for _, m := range groupPattern.FindAllStringSubmatchIndex(text, -1) {
		content := text[m[2]:m[3]]
		if !strings.Contains(content, "|") {
			continue
		}
		slots = append(slots, Slot{
			Original: text[m[0]:m[1]],
			Options:  splitOptions(content),
			Position: len(slots),
			Start:    m[0],
			End:      m[1],
		})
	}
	return slots
}

func splitOptions(content string) []string {
	parts := strings.Split(content, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
