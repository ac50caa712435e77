// Package index normalizes and validates positional indexers for array
// operations: integer, integer-sequence, boolean-mask, and span (slice) keys,
// plus the shared keyword validators used by fillna and insert.
package index

import (
	"math"

	"github.com/paveg/columnar/internal/errors"
)

// Key is a positional indexer resolved against array length rather than any
// label. Concrete forms: Int, Ints, Bools, Span.
type Key interface {
	isKey()
}

// Int indexes a single position; negative values count from the end
type Int int

// Ints indexes a sequence of positions; negative values count from the end
type Ints []int

// Bools selects positions where the mask is true; must match the array length
type Bools []bool

// Span selects a half-open range with a stride, with Python slice semantics:
// negative bounds count from the end and out-of-range bounds clamp.
type Span struct {
	Start int
	Stop  int
	Step  int
}

func (Int) isKey()   {}
func (Ints) isKey()  {}
func (Bools) isKey() {}
func (Span) isKey()  {}

// All spans the whole array
func All() Span {
	return Span{Start: 0, Stop: math.MaxInt, Step: 1}
}

// NewSpan selects [start, stop) with stride 1
func NewSpan(start, stop int) Span {
	return Span{Start: start, Stop: stop, Step: 1}
}

// ToIndices resolves key into absolute positions against an array of length n.
// Boolean masks are length-checked, integer positions are bounds-checked, and
// negative integers are translated to end-relative positions.
func ToIndices(op string, key Key, n int) ([]int, error) {
	switch k := key.(type) {
	case Int:
		i, err := normalize(op, int(k), n)
		if err != nil {
			return nil, err
		}
		return []int{i}, nil
	case Ints:
		out := make([]int, len(k))
		for pos, idx := range k {
			i, err := normalize(op, idx, n)
			if err != nil {
				return nil, err
			}
			out[pos] = i
		}
		return out, nil
	case Bools:
		if len(k) != n {
			return nil, errors.NewLengthMismatchError(op, n, len(k))
		}
		var out []int
		for i, b := range k {
			if b {
				out = append(out, i)
			}
		}
		return out, nil
	case Span:
		step := k.Step
		if step == 0 {
			return nil, errors.NewInvalidInputError(op, "span step cannot be zero")
		}
		start, stop := clamp(k.Start, n, step), clamp(k.Stop, n, step)
		var out []int
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, i)
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, i)
			}
		}
		return out, nil
	default:
		return nil, errors.NewInvalidInputError(op, "unsupported indexer type")
	}
}

func clamp(i, n, step int) int {
	if i == math.MaxInt {
		if step > 0 {
			return n
		}
		return n - 1
	}
	if i < 0 {
		i += n
		if i < 0 {
			if step > 0 {
				return 0
			}
			return -1
		}
	}
	if i > n {
		return n
	}
	return i
}

func normalize(op string, i, n int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, errors.NewBoundsError(op, i, n)
	}
	return i, nil
}

// ValidateIndices checks take indices in fill mode: every index must lie in
// {-1} ∪ [0, n)
func ValidateIndices(op string, indices []int, n int) error {
	for _, idx := range indices {
		if idx < -1 || idx >= n {
			return errors.NewBoundsError(op, idx, n)
		}
	}
	return nil
}

// ValidateInsertLoc normalizes an insert location with end-relative semantics
// for negative values and bounds-checks it against [-n-1, n]
func ValidateInsertLoc(loc, n int) (int, error) {
	if loc < 0 {
		loc += n + 1
	}
	if loc < 0 || loc > n {
		return 0, errors.NewBoundsError("Insert", loc, n)
	}
	return loc, nil
}

// ValidateFillNAKwargs rejects a fillna call that supplies both a value and a
// directional method; supplying neither degenerates to a copy at the call site
func ValidateFillNAKwargs(hasValue, hasMethod bool) error {
	if hasValue && hasMethod {
		return errors.NewInvalidInputError("FillNA", "cannot specify both a fill value and a fill method")
	}
	return nil
}
