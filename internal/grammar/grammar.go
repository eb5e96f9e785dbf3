// Package grammar resolves [[TOKEN]] agreement and function tokens.
//
// Three token forms are supported, resolved in this order:
//
//	[[PRONOUN]]        lookup in the avatar variant (case-insensitive)
//	[[A_AN:word]]      indefinite article + word
//	[[CAP:word]]       word with its first character uppercased
//
// Unknown tokens are left in place.
package grammar

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	lookupPattern = regexp.MustCompile(`\[\[([A-Za-z_]+)\]\]`)
	aAnPattern    = regexp.MustCompile(`(?i)\[\[A_AN:(.*?)\]\]`)
	capPattern    = regexp.MustCompile(`(?i)\[\[CAP:(.*?)\]\]`)
)

// NeutralKey names the variant every avatar can fall back to.
const NeutralKey = "neutral"

// Variant is a grammatical persona: token name → replacement. Keys are
// stored lowercase.
type Variant map[string]string

// NewVariant builds a Variant from fields, lowercasing keys.
func NewVariant(fields map[string]string) Variant {
	v := make(Variant, len(fields))
	for k, val := range fields {
		v[strings.ToLower(k)] = val
	}
	return v
}

// Neutral returns the default they/them variant.
func Neutral() Variant {
	return Variant{
		"pronoun":    "they",
		"ppronoun":   "them",
		"pospronoun": "their",
		"isare":      "are",
		"has_have":   "have",
		"does_do":    "do",
		"wasware":    "were",
	}
}

// WithDefaults returns v with any missing neutral key filled in.
func (v Variant) WithDefaults() Variant {
	out := Neutral()
	for k, val := range v {
		out[strings.ToLower(k)] = val
	}
	return out
}

// Resolve replaces grammar tokens in text using variant.
func Resolve(text string, variant Variant) string {
	if text == "" || !strings.Contains(text, "[[") {
		return text
	}

	text = lookupPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if val, ok := variant[strings.ToLower(tok[2:len(tok)-2])]; ok && val != "" {
			return val
		}
		return tok
	})
	text = aAnPattern.ReplaceAllStringFunc(text, func(tok string) string {
		return AAn(aAnPattern.FindStringSubmatch(tok)[1])
	})
	text = capPattern.ReplaceAllStringFunc(text, func(tok string) string {
		return Cap(capPattern.FindStringSubmatch(tok)[1])
	})
	return text
}

// AAn prefixes word with "an" when its first letter is a vowel and "a"
// otherwise. This is spelling-based, not phonetic: "a university" comes
// out as "an university" and "an hour" as "a hour".
func AAn(word string) string {
	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(word))
	switch unicode.ToLower(first) {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + word
	default:
		return "a " + word
	}
}

// Cap uppercases the first character of word and leaves the rest alone.
func Cap(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
