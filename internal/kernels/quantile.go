package kernels

import (
	"math"
	"sort"

	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// Interpolation selects how quantiles between two data points are resolved
type Interpolation int

const (
	Linear Interpolation = iota
	Lower
	Higher
	Nearest
	Midpoint
)

// ParseInterpolation maps an interpolation name to its mode
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "linear", "":
		return Linear, nil
	case "lower":
		return Lower, nil
	case "higher":
		return Higher, nil
	case "nearest":
		return Nearest, nil
	case "midpoint":
		return Midpoint, nil
	default:
		return Linear, errors.NewInvalidInputError("Quantile", "unknown interpolation: "+name)
	}
}

// QuantileWithMask computes interpolated quantiles per row of a 2-D buffer,
// honoring mask (memory order, true = missing) and substituting fill for rows
// with no valid values. The result has shape rows x len(qs) and is always
// float64; the caller's family hook casts it back to the physical domain.
func QuantileWithMask[T buffer.Element](buf *buffer.Buffer[T], mask []bool, fill T, qs []float64, interp Interpolation) *buffer.Buffer[float64] {
	rows, cols := buf.Rows(), buf.Cols()
	out := buffer.Empty2D[float64](rows, len(qs))

	for r := 0; r < rows; r++ {
		valid := make([]float64, 0, cols)
		for c := 0; c < cols; c++ {
			if !mask[buf.Index(r, c)] {
				valid = append(valid, float64(buf.At(r, c)))
			}
		}
		if len(valid) == 0 {
			for i := range qs {
				out.SetAt(r, i, float64(fill))
			}
			continue
		}
		sort.Float64s(valid)
		for i, q := range qs {
			out.SetAt(r, i, quantileSorted(valid, q, interp))
		}
	}
	return out
}

func quantileSorted(sorted []float64, q float64, interp Interpolation) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	switch interp {
	case Lower:
		return sorted[lo]
	case Higher:
		return sorted[hi]
	case Midpoint:
		return (sorted[lo] + sorted[hi]) / 2
	case Nearest:
		if pos-float64(lo) <= float64(hi)-pos {
			return sorted[lo]
		}
		return sorted[hi]
	default:
		frac := pos - float64(lo)
		return sorted[lo]*(1-frac) + sorted[hi]*frac
	}
}
