// Package columnar provides a uniform array abstraction layer for tabular
// data engines: columns stored in heterogeneous physical representations (a
// dense typed buffer, or a chunked Arrow-backed buffer) behind one logical
// contract. This package is the sole public API for the library.
package columnar

import (
	arrowlib "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/config"
	"github.com/paveg/columnar/internal/index"
	"github.com/paveg/columnar/internal/kernels"
	colmem "github.com/paveg/columnar/internal/memory"
	"github.com/paveg/columnar/internal/series"
)

// Array is the type-erased logical contract shared by both physical
// representations
type Array interface {
	Len() int
	NBytes() int
	IsNA() []bool
	Equals(other any) bool
	String() string
}

var (
	_ Array = (*array.BufferArray[int64])(nil)
	_ Array = (*array.ChunkedArray)(nil)
)

// Dense array instantiations

// Int64Array is a buffer-backed array over 64-bit elements (timestamps or codes)
type Int64Array = array.BufferArray[int64]

// Int32Array is a buffer-backed array over 32-bit coded elements
type Int32Array = array.BufferArray[int32]

// Float64Array is a buffer-backed array over 64-bit floats with NaN as missing
type Float64Array = array.BufferArray[float64]

// ChunkedArray is the chunked-buffer-backed array
type ChunkedArray = array.ChunkedArray

// Positional indexer forms

type (
	// Key is a positional indexer: Int, Ints, Bools, or Span
	Key = index.Key
	// Int indexes a single position
	Int = index.Int
	// Ints indexes a sequence of positions
	Ints = index.Ints
	// Bools selects positions where the mask is true
	Bools = index.Bools
	// Span selects a strided half-open range
	Span = index.Span
)

// Fill and search modes

// FillMethod selects the direction of a directional fill
type FillMethod = kernels.FillMethod

// SearchSide selects the insertion point reported for ties
type SearchSide = kernels.SearchSide

const (
	Pad       = kernels.Pad
	Backfill  = kernels.Backfill
	SideLeft  = kernels.SideLeft
	SideRight = kernels.SideRight
)

// NewTimestampArray builds a dense timestamp array from epoch-nanosecond
// values; positions where valid is false (nil = all valid) become missing
func NewTimestampArray(tz string, values []int64, valid []bool) (*Int64Array, error) {
	data := withSentinel(values, valid, int64(array.TimestampSentinel))
	return array.FromSlice[int64](array.TimestampFamily{TZ: tz}, data)
}

// NewCodesArray builds a dense 64-bit enumerated-code array; positions where
// valid is false (nil = all valid) become missing
func NewCodesArray(values []int64, valid []bool) (*Int64Array, error) {
	data := withSentinel(values, valid, int64(-1))
	return array.FromSlice[int64](array.CodesFamily[int64]{}, data)
}

// NewCodes32Array builds a dense 32-bit enumerated-code array
func NewCodes32Array(values []int32, valid []bool) (*Int32Array, error) {
	data := withSentinel(values, valid, int32(-1))
	return array.FromSlice[int32](array.CodesFamily[int32]{}, data)
}

// NewFloat64Array builds a dense float array; positions where valid is false
// (nil = all valid) become NaN
func NewFloat64Array(values []float64, valid []bool) (*Float64Array, error) {
	fam := array.Float64Family{}
	data := withSentinel(values, valid, fam.Sentinel())
	return array.FromSlice[float64](fam, data)
}

func withSentinel[T comparable](values []T, valid []bool, sentinel T) []T {
	if valid == nil {
		return values
	}
	out := make([]T, len(values))
	for i, v := range values {
		if valid[i] {
			out[i] = v
		} else {
			out[i] = sentinel
		}
	}
	return out
}

// NewChunkedFromSlice builds a chunked array from a slice, segmenting it per
// the configured chunk size (0 = one segment). valid marks which positions
// hold a value; nil means all valid.
func NewChunkedFromSlice[T any](values []T, valid []bool, mem memory.Allocator) (*ChunkedArray, error) {
	cfg := config.Global()
	if mem == nil {
		mem = colmem.NewAllocator(cfg)
	}

	size := cfg.ChunkSize
	if size <= 0 || size >= len(values) {
		size = len(values)
	}

	var chunks []arrowlib.Array
	if len(values) == 0 {
		chunks = append(chunks, series.BuildArray(values, nil, mem))
	}
	for start := 0; start < len(values); start += size {
		stop := start + size
		if stop > len(values) {
			stop = len(values)
		}
		var segValid []bool
		if valid != nil {
			segValid = valid[start:stop]
		}
		chunks = append(chunks, series.BuildArray(values[start:stop], segValid, mem))
	}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	return array.NewChunkedFromArrays(mem, chunks...)
}

// NewChunkedFromArrays builds a chunked array directly over Arrow segments
func NewChunkedFromArrays(mem memory.Allocator, chunks ...arrowlib.Array) (*ChunkedArray, error) {
	return array.NewChunkedFromArrays(mem, chunks...)
}

// NewSeries wraps chunked storage as a named host-facing column
func NewSeries(name string, arr *ChunkedArray) *series.Series {
	return series.NewSeries(name, arr.Chunked())
}

// ConcatInt64 concatenates dense 64-bit arrays; all inputs must share one dtype
func ConcatInt64(arrays []*Int64Array, axis int) (*Int64Array, error) {
	return array.Concat(arrays, axis)
}

// ConcatFloat64 concatenates dense float arrays
func ConcatFloat64(arrays []*Float64Array, axis int) (*Float64Array, error) {
	return array.Concat(arrays, axis)
}

// ConcatChunked flattens chunked arrays' segment sequences into one
func ConcatChunked(arrays []*ChunkedArray) (*ChunkedArray, error) {
	return array.ConcatChunked(arrays)
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides
func LoadConfig(path string) error {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	return config.SetGlobal(cfg)
}

// SetChunkSize sets the target segment length for slice-built chunked arrays
func SetChunkSize(n int) error {
	cfg := config.Global()
	cfg.ChunkSize = n
	return config.SetGlobal(cfg)
}
