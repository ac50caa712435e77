// Package testutil provides helpers for building Arrow-backed test fixtures
// with explicit segment layouts.
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/series"
)

// Chunks builds one Arrow segment per values slice; a nil entry inside a
// values slice is not expressible here, use ChunksWithValidity for nulls
func Chunks[T any](t *testing.T, mem memory.Allocator, segments ...[]T) []arrow.Array {
	t.Helper()
	out := make([]arrow.Array, len(segments))
	for i, seg := range segments {
		out[i] = series.BuildArray(seg, nil, mem)
	}
	return out
}

// ChunksWithValidity builds segments pairing each values slice with a validity
// mask (nil mask = all valid)
func ChunksWithValidity[T any](t *testing.T, mem memory.Allocator, segments [][]T, valid [][]bool) []arrow.Array {
	t.Helper()
	require.Equal(t, len(segments), len(valid))
	out := make([]arrow.Array, len(segments))
	for i, seg := range segments {
		out[i] = series.BuildArray(seg, valid[i], mem)
	}
	return out
}

// SegmentLengths reports the chunk-length layout of chunked storage
func SegmentLengths(chunked *arrow.Chunked) []int {
	out := make([]int, len(chunked.Chunks()))
	for i, c := range chunked.Chunks() {
		out[i] = c.Len()
	}
	return out
}

// ReleaseAll releases every array in arrs
func ReleaseAll(arrs []arrow.Array) {
	for _, a := range arrs {
		a.Release()
	}
}
