// Package cartesian enumerates the Cartesian product of spintax slots and
// locations without materializing it.
//
// Every combination has a global index. Indices decode to option tuples
// with mixed-radix (odometer) arithmetic, so any window [offset, offset+limit)
// can be produced directly and a caller can resume a run by persisting
// only the next offset.
package cartesian

import (
	"math/bits"

	"github.com/HendryAvila/spinforge/internal/spintax"
)

// MaxTotal is the saturation ceiling for combination counts: 2^53-1, the
// largest integer a JSON client can represent exactly. Counts above it are
// clamped and reported as saturated.
const MaxTotal int64 = 1<<53 - 1

// mulSat multiplies two non-negative counts, clamping at MaxTotal.
func mulSat(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(MaxTotal) {
		return MaxTotal, true
	}
	return int64(lo), false
}

// Count returns max(locationCount,1) multiplied by every slot's option
// count. A template with no slots and at most one location counts as 1.
// saturated reports that the true product exceeded MaxTotal.
func Count(slots []spintax.Slot, locationCount int) (total int64, saturated bool) {
	if len(slots) == 0 && locationCount <= 1 {
		return 1, false
	}
	total = int64(max(locationCount, 1))
	for _, s := range slots {
		var sat bool
		total, sat = mulSat(total, int64(len(s.Options)))
		if sat {
			return MaxTotal, true
		}
	}
	return total, false
}
