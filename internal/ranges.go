package internal

// Range is a closed time interval in milliseconds.
type Range struct {
	Start int64 `json:"start" cbor:"start"`
	End   int64 `json:"end" cbor:"end"`
}

// overlaps reports whether two ranges share at least one instant. Touching ranges overlap.
func (r Range) overlaps(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// normalised returns the range with Start <= End
func (r Range) normalised() Range {
	return Range{Start: min(r.Start, r.End), End: max(r.Start, r.End)}
}

// MergeRanges collapses possibly overlapping ranges into a set of disjoint ranges covering the same span.
//
// Invocations of the same loader interleave when a loader goes asynchronous, and their union is what
// counts as active time, not the sum of their durations.
func MergeRanges(ranges []Range) []Range {
	merged := make([]Range, 0, len(ranges))
	pending := make([]Range, len(ranges))
	copy(pending, ranges)

	for len(pending) > 0 {
		cur := pending[len(pending)-1].normalised()
		pending = pending[:len(pending)-1]

		idx := -1
		for i, existing := range merged {
			if existing.overlaps(cur) {
				idx = i
				break
			}
		}

		if idx == -1 {
			merged = append(merged, cur)
			continue
		}

		other := merged[idx]
		merged = append(merged[:idx], merged[idx+1:]...)
		// The merged range may now reach another entry, so it goes back for another pass
		pending = append(pending, Range{
			Start: min(cur.Start, other.Start),
			End:   max(cur.End, other.End),
		})
	}

	return merged
}

// TotalSpan sums the lengths of the given ranges
func TotalSpan(ranges []Range) int64 {
	var total int64
	for _, r := range ranges {
		total += r.End - r.Start
	}
	return total
}
