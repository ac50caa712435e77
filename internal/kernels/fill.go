package kernels

import (
	"github.com/paveg/columnar/internal/buffer"
)

// FillMethod selects the direction of a directional fill
type FillMethod int

const (
	// Pad propagates the last valid observation forward
	Pad FillMethod = iota
	// Backfill propagates the next valid observation backward
	Backfill
)

// PadOrBackfill fills missing positions of buf in place along each row,
// bounded by limit (0 means unlimited). mask is aligned to buf.Data() in
// memory order and marks missing positions; filled positions are cleared in
// mask so callers observe what remains missing.
func PadOrBackfill[T buffer.Element](buf *buffer.Buffer[T], method FillMethod, limit int, mask []bool) {
	rows, cols := buf.Rows(), buf.Cols()

	for r := 0; r < rows; r++ {
		if method == Pad {
			fillRow(buf, mask, r, 0, cols, 1, limit)
		} else {
			fillRow(buf, mask, r, cols-1, -1, -1, limit)
		}
	}
}

func fillRow[T buffer.Element](buf *buffer.Buffer[T], mask []bool, r, start, stop, step, limit int) {
	haveValid := false
	var last T
	run := 0
	for c := start; c != stop; c += step {
		i := buf.Index(r, c)
		if !mask[i] {
			haveValid = true
			last = buf.At(r, c)
			run = 0
			continue
		}
		if !haveValid {
			continue
		}
		run++
		if limit > 0 && run > limit {
			continue
		}
		buf.SetAt(r, c, last)
		mask[i] = false
	}
}
