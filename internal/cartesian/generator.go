package cartesian

import (
	"iter"
	"strconv"
	"strings"

	"github.com/HendryAvila/spinforge/internal/spintax"
)

// Result is one combination of the product space.
type Result struct {
	Text       string            `json:"text"`
	SlotValues map[string]string `json:"slotValues"`
	// Index is the global position in the product sequence. Passing
	// Index+1 as the next Window.Offset resumes right after this result.
	Index    int64        `json:"index"`
	Location *LocationRef `json:"location,omitempty"`
}

// Window selects the indices [Offset, Offset+Limit) of a product space.
// Limit <= 0 means no limit.
type Window struct {
	Offset int64 `json:"offset"`
	Limit  int64 `json:"limit"`
}

// bounds clamps the window to a space of total combinations.
func (w Window) bounds(total int64) (start, end int64) {
	start = min(max(w.Offset, 0), total)
	if w.Limit <= 0 || w.Limit > total-start {
		return start, total
	}
	return start, start + w.Limit
}

// decoder maps a spintax index to one option per slot.
type decoder struct {
	slots    []spintax.Slot
	divisors []int64
	total    int64
}

func newDecoder(slots []spintax.Slot) decoder {
	d := decoder{slots: slots, divisors: make([]int64, len(slots))}
	div := int64(1)
	for i := len(slots) - 1; i >= 0; i-- {
		d.divisors[i] = div
		// A saturated divisor is larger than any reachable index, so
		// the quotient for that slot is 0 and the decode stays 1:1.
		div, _ = mulSat(div, int64(len(slots[i].Options)))
	}
	d.total = div
	return d
}

// render builds the text for index from the unmodified template, writing
// chosen options over each slot's span. It never rewrites an already
// substituted string, so slots sharing literal text cannot collide.
func (d decoder) render(template string, index int64) (string, map[string]string) {
	values := make(map[string]string, len(d.slots))
	var b strings.Builder
	b.Grow(len(template))
	prev := 0
	for i, s := range d.slots {
		opt := s.Options[(index/d.divisors[i])%int64(len(s.Options))]
		values["slot_"+strconv.Itoa(i)] = opt
		b.WriteString(template[prev:s.Start])
		b.WriteString(opt)
		prev = s.End
	}
	b.WriteString(template[prev:])
	return b.String(), values
}

// Product yields the spintax combinations of template inside w, in index
// order with the rightmost slot cycling fastest. slots must come from
// spintax.Extract(template). With no slots the space holds exactly one
// result, the literal template, whatever the limit.
func Product(template string, slots []spintax.Slot, w Window) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		if len(slots) == 0 {
			if w.Offset <= 0 {
				yield(Result{Text: template, SlotValues: map[string]string{}, Index: 0})
			}
			return
		}
		d := newDecoder(slots)
		start, end := w.bounds(d.total)
		for idx := start; idx < end; idx++ {
			text, values := d.render(template, idx)
			if !yield(Result{Text: text, SlotValues: values, Index: idx}) {
				return
			}
		}
	}
}

// Explode returns up to maxCount variations of text, without locations.
// maxCount <= 0 returns the whole space.
func Explode(text string, maxCount int) []string {
	var out []string
	for r := range Product(text, spintax.Extract(text), Window{Limit: int64(maxCount)}) {
		out = append(out, r.Text)
	}
	return out
}

// Collect drains seq into a slice, stopping after limit results when
// limit > 0.
func Collect(seq iter.Seq[Result], limit int) []Result {
	var out []Result
	for r := range seq {
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
