// Package series bridges Go slices and Arrow storage for the host container:
// it builds Arrow arrays (with validity) from typed slices and wraps
// kernel results for host-facing consumption.
package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BuildArray creates an Arrow array from a slice of values. valid marks which
// positions hold a value; a nil valid means all positions are valid.
func BuildArray[T any](values []T, valid []bool, mem memory.Allocator) arrow.Array {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	case []float32:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		appendAll(builder.Append, builder.AppendNull, v, valid)
		return builder.NewArray()
	default:
		panic(fmt.Sprintf("series: unsupported type: %T", values))
	}
}

func appendAll[T any](appendVal func(T), appendNull func(), values []T, valid []bool) {
	for i, v := range values {
		if valid != nil && !valid[i] {
			appendNull()
			continue
		}
		appendVal(v)
	}
}

// Series is a named column over chunked Arrow storage, the host-facing
// wrapper for array results
type Series struct {
	name    string
	chunked *arrow.Chunked
}

// NewSeries wraps chunked storage under a name, retaining it
func NewSeries(name string, chunked *arrow.Chunked) *Series {
	chunked.Retain()
	return &Series{name: name, chunked: chunked}
}

// Name returns the column name
func (s *Series) Name() string { return s.name }

// Len returns the logical length
func (s *Series) Len() int { return s.chunked.Len() }

// DataType returns the Arrow data type
func (s *Series) DataType() arrow.DataType { return s.chunked.DataType() }

// Chunked returns the underlying chunked storage (retains a reference)
func (s *Series) Chunked() *arrow.Chunked {
	s.chunked.Retain()
	return s.chunked
}

// IsNull checks if the value at logical position i is null
func (s *Series) IsNull(i int) bool {
	for _, chunk := range s.chunked.Chunks() {
		if i < chunk.Len() {
			return chunk.IsNull(i)
		}
		i -= chunk.Len()
	}
	return false
}

// String returns a string representation of the series
func (s *Series) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.chunked.DataType(), s.name, s.Len())
}

// Release releases the underlying Arrow memory
func (s *Series) Release() {
	if s.chunked != nil {
		s.chunked.Release()
	}
}
