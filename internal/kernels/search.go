package kernels

import (
	"sort"

	"github.com/paveg/columnar/internal/buffer"
)

// SearchSide selects which insertion point SearchSorted reports for ties
type SearchSide int

const (
	// SideLeft reports the leftmost suitable insertion point
	SideLeft SearchSide = iota
	// SideRight reports the rightmost suitable insertion point
	SideRight
)

// SearchSorted returns the index where value would be inserted into data to
// keep it sorted. sorter, when non-nil, is a permutation that sorts data
// ascending; the returned index is into the sorted order.
func SearchSorted[T buffer.Element](data []T, value T, side SearchSide, sorter []int) int {
	at := func(i int) T {
		if sorter != nil {
			return data[sorter[i]]
		}
		return data[i]
	}
	if side == SideLeft {
		return sort.Search(len(data), func(i int) bool { return at(i) >= value })
	}
	return sort.Search(len(data), func(i int) bool { return at(i) > value })
}

// ArgExtreme1D returns the position of the minimum (or maximum) non-missing
// value of data, skipping positions where isNA reports missing. Returns -1
// when every value is missing. First occurrence wins ties.
func ArgExtreme1D[T buffer.Element](data []T, isNA func(T) bool, wantMax bool) int {
	best := -1
	for i, v := range data {
		if isNA != nil && isNA(v) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if wantMax {
			if v > data[best] {
				best = i
			}
		} else {
			if v < data[best] {
				best = i
			}
		}
	}
	return best
}
