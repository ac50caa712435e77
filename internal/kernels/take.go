// Package kernels implements the low-level computation primitives consumed by
// the array components: gather, shift, directional fill, masked quantiles,
// distinct-value and sorted-search kernels over dense buffers.
//
// Kernels operate on owned buffers and either mutate in place (directional
// fill) or allocate fresh storage; they never alias their inputs.
package kernels

import (
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// Take gathers elements of buf at indices along axis.
//
// With allowFill, -1 marks "insert fillValue here" and any other negative index
// is rejected; without it, negative indices count from the end. Out-of-range
// indices fail with a bounds error before any allocation is observable to the
// caller.
func Take[T buffer.Element](buf *buffer.Buffer[T], indices []int, allowFill bool, fillValue T, axis int) (*buffer.Buffer[T], error) {
	n := buf.Cols()
	if buf.NDim() == 2 && axis == 0 {
		n = buf.Rows()
	}

	for _, idx := range indices {
		if allowFill {
			if idx < -1 || idx >= n {
				return nil, errors.NewBoundsError("Take", idx, n)
			}
		} else {
			if idx < -n || idx >= n {
				return nil, errors.NewBoundsError("Take", idx, n)
			}
		}
	}

	if buf.NDim() == 1 {
		out := make([]T, len(indices))
		src := buf.Data()
		for i, idx := range indices {
			switch {
			case allowFill && idx == -1:
				out[i] = fillValue
			case idx < 0:
				out[i] = src[idx+n]
			default:
				out[i] = src[idx]
			}
		}
		return buffer.New1D(out), nil
	}

	rows, cols := buf.Rows(), buf.Cols()
	if axis == 0 {
		out := buffer.Empty2D[T](len(indices), cols)
		for i, idx := range indices {
			for c := 0; c < cols; c++ {
				switch {
				case allowFill && idx == -1:
					out.SetAt(i, c, fillValue)
				case idx < 0:
					out.SetAt(i, c, buf.At(idx+rows, c))
				default:
					out.SetAt(i, c, buf.At(idx, c))
				}
			}
		}
		return out, nil
	}

	out := buffer.Empty2D[T](rows, len(indices))
	for r := 0; r < rows; r++ {
		for i, idx := range indices {
			switch {
			case allowFill && idx == -1:
				out.SetAt(r, i, fillValue)
			case idx < 0:
				out.SetAt(r, i, buf.At(r, idx+cols))
			default:
				out.SetAt(r, i, buf.At(r, idx))
			}
		}
	}
	return out, nil
}
