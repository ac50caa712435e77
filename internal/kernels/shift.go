package kernels

import (
	"github.com/paveg/columnar/internal/buffer"
)

// Shift moves elements by periods along axis, filling vacated slots with fill.
// A shift by zero or by more than the axis length degenerates to a copy or an
// all-fill buffer respectively.
func Shift[T buffer.Element](buf *buffer.Buffer[T], periods, axis int, fill T) *buffer.Buffer[T] {
	if periods == 0 {
		return buf.Copy()
	}

	if buf.NDim() == 1 {
		n := buf.Len()
		out := make([]T, n)
		src := buf.Data()
		for i := range out {
			j := i - periods
			if j < 0 || j >= n {
				out[i] = fill
			} else {
				out[i] = src[j]
			}
		}
		return buffer.New1D(out)
	}

	rows, cols := buf.Rows(), buf.Cols()
	out := buffer.Empty2D[T](rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			jr, jc := r, c
			if axis == 0 {
				jr = r - periods
			} else {
				jc = c - periods
			}
			if jr < 0 || jr >= rows || jc < 0 || jc >= cols {
				out.SetAt(r, c, fill)
			} else {
				out.SetAt(r, c, buf.At(jr, jc))
			}
		}
	}
	return out
}
