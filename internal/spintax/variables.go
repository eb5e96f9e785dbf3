package spintax

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// variablePattern matches a pipe-free innermost group: {name}.
var variablePattern = regexp.MustCompile(`\{([^{}|]+)\}`)

// Variables maps placeholder names to values. Lookups ignore case.
type Variables map[string]string

// Lookup returns the value for name, matching keys case-insensitively.
// An exact-case key wins, then the lower-case key, then the smallest
// other key that folds to name.
func (v Variables) Lookup(name string) (string, bool) {
	if val, ok := v[name]; ok {
		return val, true
	}
	if val, ok := v[strings.ToLower(name)]; ok {
		return val, true
	}
	var (
		best  string
		found bool
	)
	for k := range v {
		if strings.EqualFold(k, name) && (!found || k < best) {
			best, found = k, true
		}
	}
	if !found {
		return "", false
	}
	return v[best], true
}

// Merge returns a new map with over applied on top of base, keyed in
// lower case. On collision the key from over wins; within one map the
// value Lookup would pick for the lower-case name is kept.
func Merge(base, over Variables) Variables {
	out := make(Variables, len(base)+len(over))
	fold(out, base)
	fold(out, over)
	return out
}

func fold(out, m Variables) {
	taken := make(map[string]bool, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		lk := strings.ToLower(k)
		if k == lk || !taken[lk] {
			out[lk] = m[k]
			taken[lk] = true
		}
	}
}

// Inject replaces {name} placeholders with their values. Groups that
// contain a pipe are spintax and are never touched, so Inject must run
// after spintax resolution. Unknown names stay literal.
func Inject(text string, vars Variables) string {
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	return variablePattern.ReplaceAllStringFunc(text, func(group string) string {
		if val, ok := vars.Lookup(group[1 : len(group)-1]); ok {
			return val
		}
		return group
	})
}
