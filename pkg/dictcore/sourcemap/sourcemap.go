// Package sourcemap tracks the bijection between positions in a
// transformed string and positions in the original string that produced
// it, so a lookup result can always report the exact original slice that
// matched.
package sourcemap

// SourceMap is an ordered sequence of segment lengths over the
// transformed string. Segment i maps to OriginalSegmentLength[i] original
// code units (runes).
//
// Invariant: sum of transformed segment lengths equals the current
// transformed string's length; sum of original segment lengths equals
// the original string's length.
type SourceMap struct {
	transformedLengths []int
	originalLengths    []int
}

// New builds the identity source map for a string of the given rune
// length: one segment per rune, each mapping 1:1 to the original.
func New(length int) *SourceMap {
	sm := &SourceMap{
		transformedLengths: make([]int, length),
		originalLengths:    make([]int, length),
	}
	for i := range sm.transformedLengths {
		sm.transformedLengths[i] = 1
		sm.originalLengths[i] = 1
	}
	return sm
}

// Clone returns an independent copy, so one transformation's map update
// doesn't alias another variant branch of the text-variant generator.
func (sm *SourceMap) Clone() *SourceMap {
	out := &SourceMap{
		transformedLengths: append([]int(nil), sm.transformedLengths...),
		originalLengths:    append([]int(nil), sm.originalLengths...),
	}
	return out
}

// TransformedLength returns the current transformed string's rune length
// (sum of all segment transformed lengths).
func (sm *SourceMap) TransformedLength() int {
	total := 0
	for _, l := range sm.transformedLengths {
		total += l
	}
	return total
}

// Combine replaces the segments covering [start, start+transformedSpan)
// of the current transformed string with a single segment whose
// transformed length is newTransformedLen and whose original length is
// the sum of the original lengths of the replaced segments. This is how
// a single text replacement or script conversion of length n → m updates
// the map: the n transformed-length segments it consumed collapse into
// one segment of length m, carrying forward however many original code
// units those n segments represented.
func (sm *SourceMap) Combine(start, transformedSpan, newTransformedLen int) {
	end := start + transformedSpan
	if start < 0 || end > len(sm.transformedLengths) || start > end {
		return
	}

	originalSum := 0
	for i := start; i < end; i++ {
		originalSum += sm.originalLengths[i]
	}

	newTransformed := make([]int, 0, len(sm.transformedLengths)-transformedSpan+1)
	newOriginal := make([]int, 0, len(sm.originalLengths)-transformedSpan+1)

	newTransformed = append(newTransformed, sm.transformedLengths[:start]...)
	newOriginal = append(newOriginal, sm.originalLengths[:start]...)

	newTransformed = append(newTransformed, newTransformedLen)
	newOriginal = append(newOriginal, originalSum)

	newTransformed = append(newTransformed, sm.transformedLengths[end:]...)
	newOriginal = append(newOriginal, sm.originalLengths[end:]...)

	sm.transformedLengths = newTransformed
	sm.originalLengths = newOriginal
}

// OriginalPrefixLength returns the length, in original code units, of the
// original string that produced transformed[0:transformedPrefixLength].
//
// transformedPrefixLength need not land exactly on a segment boundary:
// when it falls inside a segment, that segment's original contribution
// is prorated. This happens when the cut falls inside a segment whose
// transformed length is greater than 1, i.e. one produced by Combine; the
// term finder walks every rune boundary of the transformed string, so its
// cuts can land inside such a segment.
func (sm *SourceMap) OriginalPrefixLength(transformedPrefixLength int) int {
	remaining := transformedPrefixLength
	total := 0
	for i, tl := range sm.transformedLengths {
		if remaining <= 0 {
			break
		}
		if remaining >= tl {
			total += sm.originalLengths[i]
			remaining -= tl
		} else {
			// Proportional fallback for a non-boundary cut.
			if tl > 0 {
				total += sm.originalLengths[i] * remaining / tl
			}
			remaining = 0
		}
	}
	return total
}

// OriginalLength returns OriginalPrefixLength for the full transformed
// string — the round-trip property: for any transformation
// chain, OriginalLength(transformed.length) == original.length.
func (sm *SourceMap) OriginalLength() int {
	return sm.OriginalPrefixLength(sm.TransformedLength())
}
