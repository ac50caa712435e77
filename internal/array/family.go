// Package array implements the two physical realizations of the logical array
// contract: BufferArray over a dense mutable buffer, and ChunkedArray over an
// immutable sequence of Arrow segments.
package array

import (
	"math"
	"time"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/dtype"
	"github.com/paveg/columnar/internal/errors"
)

// Family supplies the extension hooks a concrete physical family must provide
// to map user-facing scalars to and from the internal buffer domain. Every
// BufferArray carries exactly one Family.
type Family[T buffer.Element] interface {
	// DType identifies the logical dtype, metadata included
	DType() dtype.DType
	// Sentinel returns the in-buffer representation of "missing"
	Sentinel() T
	// IsNA reports whether a raw buffer element denotes missing
	IsNA(x T) bool
	// ValidateScalar maps a user-facing scalar into the buffer domain,
	// with nil meaning missing. Fails with a domain error when the value
	// is not representable.
	ValidateScalar(op string, v any) (T, error)
	// Box maps one raw buffer element to its user-facing scalar form;
	// missing elements box to nil
	Box(x T) any
	// CastQuantileResult casts interpolated quantile output back into the
	// buffer domain
	CastQuantileResult(vals []float64) []T
}

// TimestampFamily is the temporal family: 64-bit epoch-nanosecond codes with
// math.MinInt64 as the missing sentinel, timezone carried as dtype metadata.
type TimestampFamily struct {
	TZ string
}

// TimestampSentinel is the in-buffer missing marker for timestamps
const TimestampSentinel = math.MinInt64

func (f TimestampFamily) DType() dtype.DType { return dtype.Timestamp("ns", f.TZ) }

func (f TimestampFamily) Sentinel() int64 { return TimestampSentinel }

func (f TimestampFamily) IsNA(x int64) bool { return x == TimestampSentinel }

func (f TimestampFamily) ValidateScalar(op string, v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return TimestampSentinel, nil
	case int64:
		return val, nil
	case time.Time:
		return val.UnixNano(), nil
	default:
		return 0, errors.NewDomainError(op, v)
	}
}

func (f TimestampFamily) Box(x int64) any {
	if x == TimestampSentinel {
		return nil
	}
	return time.Unix(0, x).UTC()
}

func (f TimestampFamily) CastQuantileResult(vals []float64) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(v)
	}
	return out
}

// CodesFamily is the enumerated-code family: signed integer codes of a fixed
// width with -1 as the missing sentinel. The code width is part of the dtype,
// so 32-bit and 64-bit coded arrays never concatenate.
type CodesFamily[T constraints.Signed] struct{}

func (f CodesFamily[T]) DType() dtype.DType {
	var zero T
	return dtype.Codes(int(unsafe.Sizeof(zero)))
}

func (f CodesFamily[T]) Sentinel() T { return T(-1) }

func (f CodesFamily[T]) IsNA(x T) bool { return x == T(-1) }

func (f CodesFamily[T]) ValidateScalar(op string, v any) (T, error) {
	switch val := v.(type) {
	case nil:
		return T(-1), nil
	case int:
		return f.checkRange(op, int64(val))
	case int32:
		return f.checkRange(op, int64(val))
	case int64:
		return f.checkRange(op, val)
	default:
		var zero T
		return zero, errors.NewDomainError(op, v)
	}
}

func (f CodesFamily[T]) checkRange(op string, v int64) (T, error) {
	if v < 0 {
		var zero T
		return zero, errors.NewDomainError(op, v)
	}
	code := T(v)
	if int64(code) != v {
		var zero T
		return zero, errors.NewDomainError(op, v)
	}
	return code, nil
}

func (f CodesFamily[T]) Box(x T) any {
	if x == T(-1) {
		return nil
	}
	return int64(x)
}

func (f CodesFamily[T]) CastQuantileResult(vals []float64) []T {
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = T(v)
	}
	return out
}

// Float64Family is the floating-point family: NaN is the missing sentinel, so
// unlike the sentinel-coded families isna is not a plain equality test.
type Float64Family struct{}

func (f Float64Family) DType() dtype.DType { return dtype.Float64() }

func (f Float64Family) Sentinel() float64 { return math.NaN() }

func (f Float64Family) IsNA(x float64) bool { return x != x }

func (f Float64Family) ValidateScalar(op string, v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, errors.NewDomainError(op, v)
	}
}

func (f Float64Family) Box(x float64) any {
	if x != x {
		return nil
	}
	return x
}

func (f Float64Family) CastQuantileResult(vals []float64) []float64 {
	return vals
}
