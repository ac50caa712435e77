// Package buffer provides the dense, fixed-width storage primitive backing
// buffer-backed arrays: a contiguous typed block that is logically 1-D or 2-D,
// in row-major or column-major layout.
package buffer

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Element is the element domain of a dense buffer: any fixed-width numeric type
type Element interface {
	constraints.Integer | constraints.Float
}

// Buffer is a contiguous typed block with shape metadata. A Buffer is exclusively
// owned by its array instance; transformations allocate fresh Buffers and never
// alias existing data without an explicit copy.
type Buffer[T Element] struct {
	data     []T
	rows     int
	cols     int
	ndim     int
	colMajor bool
}

// New1D wraps data as a 1-D buffer. The buffer takes ownership of data.
func New1D[T Element](data []T) *Buffer[T] {
	return &Buffer[T]{data: data, rows: 1, cols: len(data), ndim: 1}
}

// New2D wraps data as a rows x cols buffer in the given layout.
// The buffer takes ownership of data; len(data) must equal rows*cols.
func New2D[T Element](data []T, rows, cols int, colMajor bool) *Buffer[T] {
	if len(data) != rows*cols {
		panic("buffer: data length does not match shape")
	}
	return &Buffer[T]{data: data, rows: rows, cols: cols, ndim: 2, colMajor: colMajor}
}

// Empty allocates an uninitialized 1-D buffer of length n
func Empty[T Element](n int) *Buffer[T] {
	return New1D(make([]T, n))
}

// Empty2D allocates an uninitialized rows x cols row-major buffer
func Empty2D[T Element](rows, cols int) *Buffer[T] {
	return New2D(make([]T, rows*cols), rows, cols, false)
}

// Len returns the total logical element count
func (b *Buffer[T]) Len() int { return len(b.data) }

// NDim returns 1 or 2
func (b *Buffer[T]) NDim() int { return b.ndim }

// Rows returns the row count (1 for 1-D buffers)
func (b *Buffer[T]) Rows() int { return b.rows }

// Cols returns the column count (the length for 1-D buffers)
func (b *Buffer[T]) Cols() int { return b.cols }

// ColMajor reports whether a 2-D buffer is laid out column-major
func (b *Buffer[T]) ColMajor() bool { return b.colMajor }

// NBytes returns the storage size in bytes
func (b *Buffer[T]) NBytes() int {
	var zero T
	return len(b.data) * int(unsafe.Sizeof(zero))
}

// Data exposes the raw backing slice in memory order
func (b *Buffer[T]) Data() []T { return b.data }

// At returns the element at (row, col) honoring the layout
func (b *Buffer[T]) At(row, col int) T {
	return b.data[b.offset(row, col)]
}

// SetAt writes the element at (row, col) honoring the layout
func (b *Buffer[T]) SetAt(row, col int, v T) {
	b.data[b.offset(row, col)] = v
}

// Index returns the memory-order position of (row, col); masks aligned to
// Data() are indexed with it
func (b *Buffer[T]) Index(row, col int) int {
	return b.offset(row, col)
}

func (b *Buffer[T]) offset(row, col int) int {
	if b.colMajor {
		return col*b.rows + row
	}
	return row*b.cols + col
}

// Copy returns a deep copy with identical shape and layout
func (b *Buffer[T]) Copy() *Buffer[T] {
	data := make([]T, len(b.data))
	copy(data, b.data)
	return &Buffer[T]{data: data, rows: b.rows, cols: b.cols, ndim: b.ndim, colMajor: b.colMajor}
}

// Slice1D returns a copied sub-buffer of a 1-D buffer over [start, stop)
func (b *Buffer[T]) Slice1D(start, stop int) *Buffer[T] {
	data := make([]T, stop-start)
	copy(data, b.data[start:stop])
	return New1D(data)
}

// WrapLike wraps data with the receiver's shape and layout metadata
func (b *Buffer[T]) WrapLike(data []T) *Buffer[T] {
	return &Buffer[T]{data: data, rows: b.rows, cols: b.cols, ndim: b.ndim, colMajor: b.colMajor}
}

// Ravel flattens the buffer to 1-D in its existing memory order, without copying.
// Together with Unravel this is the pre/post adapter for operations defined only
// on 1-D buffers.
func (b *Buffer[T]) Ravel() *Buffer[T] {
	if b.ndim == 1 {
		return b
	}
	return New1D(b.data)
}

// Unravel reshapes flat 1-D data back into the receiver's original shape,
// preserving whether the buffer was row-major or column-major
func (b *Buffer[T]) Unravel(flat *Buffer[T]) *Buffer[T] {
	if b.ndim == 1 {
		return flat
	}
	return New2D(flat.data, b.rows, b.cols, b.colMajor)
}

// Row returns a copy of logical row r
func (b *Buffer[T]) Row(r int) []T {
	out := make([]T, b.cols)
	for c := 0; c < b.cols; c++ {
		out[c] = b.At(r, c)
	}
	return out
}

// Equal reports element-wise equality of shape and contents.
// Positions where both sides satisfy bothNA are treated as equal; bothNA may be
// nil when plain equality suffices.
func Equal[T Element](a, b *Buffer[T], bothNA func(x, y T) bool) bool {
	if a.ndim != b.ndim || a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.cols; c++ {
			x, y := a.At(r, c), b.At(r, c)
			if x == y {
				continue
			}
			if bothNA != nil && bothNA(x, y) {
				continue
			}
			return false
		}
	}
	return true
}
