// Package dedupe suppresses texts a campaign has already produced.
package dedupe

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Gate is a per-run membership set. Build one per campaign batch from the
// texts already persisted; it is not safe for concurrent use.
type Gate struct {
	seen     map[string]struct{}
	existing int
	skipped  int
}

// NewGate seeds a gate with previously persisted texts.
func NewGate(existing []string) *Gate {
	g := &Gate{seen: make(map[string]struct{}, len(existing))}
	for _, text := range existing {
		g.seen[text] = struct{}{}
	}
	g.existing = len(g.seen)
	return g
}

// Admit reports whether text is new. A new text is remembered, so
// submitting it again in the same run is a skip.
func (g *Gate) Admit(text string) bool {
	if _, ok := g.seen[text]; ok {
		g.skipped++
		return false
	}
	g.seen[text] = struct{}{}
	return true
}

// Forget removes text, for when a candidate was admitted but could not be
// persisted and may be retried later.
func (g *Gate) Forget(text string) {
	delete(g.seen, text)
}

// Skipped is the number of rejected submissions.
func (g *Gate) Skipped() int { return g.skipped }

// Existing is the number of distinct texts the gate was seeded with.
func (g *Gate) Existing() int { return g.existing }

// Hash is the generation hash of a combination: md5 hex of the parts
// joined with "_", e.g. Hash(site, avatar, niche, city, pattern).
func Hash(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "_")))
	return hex.EncodeToString(sum[:])
}
