package array

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cespare/xxhash/v2"

	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/index"
)

// ChunkedArray is the chunked-buffer-backed realization of the logical array
// contract: an ordered sequence of fixed-length immutable Arrow segments whose
// concatenation is the logical array. Segments are never mutated; write paths
// rebuild the segment sequence and rebind it.
type ChunkedArray struct {
	chunked *arrow.Chunked
	mem     memory.Allocator
	conv    SetitemConverter
}

// SetitemConverter maps user-facing scalars into a segment's native scalar
// domain. Each concrete physical family must supply one; nil means missing.
type SetitemConverter interface {
	ConvertScalar(op string, v any) (any, error)
}

// NewChunkedArray wraps chunked storage, retaining it. conv may be nil for
// read-only use; Set then fails with an abstract-method error.
func NewChunkedArray(chunked *arrow.Chunked, mem memory.Allocator, conv SetitemConverter) *ChunkedArray {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	chunked.Retain()
	return &ChunkedArray{chunked: chunked, mem: mem, conv: conv}
}

// NewChunkedFromArrays builds a chunked array over the given segments,
// inferring the setitem converter from the segment type. Segment types with no
// converter are rejected here rather than failing later on a read path.
func NewChunkedFromArrays(mem memory.Allocator, chunks ...arrow.Array) (*ChunkedArray, error) {
	if len(chunks) == 0 {
		return nil, errors.NewInvalidInputError("NewChunkedFromArrays", "at least one segment is required")
	}
	conv, err := ConverterFor(chunks[0].DataType())
	if err != nil {
		return nil, err
	}
	chunked := arrow.NewChunked(chunks[0].DataType(), chunks)
	defer chunked.Release()
	return NewChunkedArray(chunked, mem, conv), nil
}

func (a *ChunkedArray) wrapOwned(ch *arrow.Chunked) *ChunkedArray {
	return &ChunkedArray{chunked: ch, mem: a.mem, conv: a.conv}
}

// Len returns the total logical length
func (a *ChunkedArray) Len() int { return a.chunked.Len() }

// NullN returns the number of missing positions
func (a *ChunkedArray) NullN() int { return a.chunked.NullN() }

// DataType returns the Arrow type of the segments
func (a *ChunkedArray) DataType() arrow.DataType { return a.chunked.DataType() }

// Chunked exposes the underlying chunked storage without retaining it
func (a *ChunkedArray) Chunked() *arrow.Chunked { return a.chunked }

// NBytes returns the bytes held by all segment buffers
func (a *ChunkedArray) NBytes() int {
	total := 0
	for _, chunk := range a.chunked.Chunks() {
		for _, buf := range chunk.Data().Buffers() {
			if buf != nil {
				total += buf.Len()
			}
		}
	}
	return total
}

// Release releases the underlying Arrow memory
func (a *ChunkedArray) Release() { a.chunked.Release() }

// IsNA returns the element-wise null mask aligned to logical position,
// delegating to the segments' validity tracking
func (a *ChunkedArray) IsNA() []bool {
	mask := make([]bool, 0, a.Len())
	for _, chunk := range a.chunked.Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			mask = append(mask, chunk.IsNull(i))
		}
	}
	return mask
}

// Copy returns a shallow copy: segments are immutable, so sharing them is safe
func (a *ChunkedArray) Copy() *ChunkedArray {
	a.chunked.Retain()
	return a.wrapOwned(a.chunked)
}

// Equals reports value-level equality of two chunked arrays of the same
// concrete type, with nulls equal to nulls at matching positions. Type
// mismatches compare false, never fail.
func (a *ChunkedArray) Equals(other any) bool {
	b, ok := other.(*ChunkedArray)
	if !ok {
		return false
	}
	if !arrow.TypeEqual(a.DataType(), b.DataType()) {
		return false
	}
	return arrowarray.ChunkedEqual(a.chunked, b.chunked)
}

// Value returns the boxed scalar at logical position i; missing boxes to nil
func (a *ChunkedArray) Value(i int) (any, error) {
	chunk, offset, err := a.resolve("Value", i)
	if err != nil {
		return nil, err
	}
	return boxChunkValue(chunk, offset), nil
}

func (a *ChunkedArray) resolve(op string, i int) (arrow.Array, int, error) {
	if i < 0 || i >= a.Len() {
		return nil, 0, errors.NewBoundsError(op, i, a.Len())
	}
	for _, chunk := range a.chunked.Chunks() {
		if i < chunk.Len() {
			return chunk, i, nil
		}
		i -= chunk.Len()
	}
	return nil, 0, errors.NewBoundsError(op, i, a.Len())
}

// Take gathers elements at indices. With allowFill, -1 marks missing-or-fill
// positions: a nil fillValue yields null, any other fill value is written
// directly during the gather. Without fill, negative indices count from the
// end. Fails with a bounds error before any allocation escapes.
func (a *ChunkedArray) Take(indices []int, allowFill bool, fillValue any) (*ChunkedArray, error) {
	n := a.Len()
	if n == 0 {
		for _, idx := range indices {
			if idx >= 0 {
				return nil, errors.NewBoundsError("Take", idx, 0)
			}
		}
	}
	for _, idx := range indices {
		if idx >= n {
			return nil, errors.NewBoundsError("Take", idx, n)
		}
	}

	var fill any
	if allowFill {
		if err := index.ValidateIndices("Take", indices, n); err != nil {
			return nil, err
		}
		if fillValue != nil {
			if a.conv == nil {
				return nil, errors.NewAbstractMethodError("Take", "SetitemConverter")
			}
			converted, err := a.conv.ConvertScalar("Take", fillValue)
			if err != nil {
				return nil, err
			}
			fill = converted
		}
	} else {
		for _, idx := range indices {
			if idx < -n {
				return nil, errors.NewBoundsError("Take", idx, n)
			}
		}
	}

	builder := arrowarray.NewBuilder(a.mem, a.DataType())
	defer builder.Release()

	for _, idx := range indices {
		if allowFill && idx == -1 {
			if err := appendScalar("Take", builder, fill); err != nil {
				return nil, err
			}
			continue
		}
		if idx < 0 {
			idx += n
		}
		chunk, offset, err := a.resolve("Take", idx)
		if err != nil {
			return nil, err
		}
		copyChunkValue(builder, chunk, offset)
	}

	arr := builder.NewArray()
	defer arr.Release()
	return a.wrapOwned(arrow.NewChunked(a.DataType(), []arrow.Array{arr})), nil
}

// CountedChunk pairs distinct values with their counts, in the order produced
// by the counting walk
type CountedChunk struct {
	Values *ChunkedArray
	Counts []int64
}

// ValueCounts counts distinct values. With dropna the null entry is filtered
// out; otherwise exactly one null entry carries the missing-position count.
func (a *ChunkedArray) ValueCounts(dropna bool) (*CountedChunk, error) {
	firstPos := make(map[uint64]int)
	var order []int
	var counts []int64
	nullCount := int64(0)

	pos := 0
	for _, chunk := range a.chunked.Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				nullCount++
				pos++
				continue
			}
			key := hashChunkValue(chunk, i)
			if at, ok := firstPos[key]; ok {
				counts[at]++
			} else {
				firstPos[key] = len(order)
				order = append(order, pos)
				counts = append(counts, 1)
			}
			pos++
		}
	}

	builder := arrowarray.NewBuilder(a.mem, a.DataType())
	defer builder.Release()
	for _, p := range order {
		chunk, offset, err := a.resolve("ValueCounts", p)
		if err != nil {
			return nil, err
		}
		copyChunkValue(builder, chunk, offset)
	}
	if !dropna && nullCount > 0 {
		builder.AppendNull()
		counts = append(counts, nullCount)
	}

	arr := builder.NewArray()
	defer arr.Release()
	values := a.wrapOwned(arrow.NewChunked(a.DataType(), []arrow.Array{arr}))
	return &CountedChunk{Values: values, Counts: counts}, nil
}

// Factorize dictionary-encodes the logical values: an integer code per
// position with naSentinel substituted at nulls, plus a new chunked array of
// the distinct dictionary values (empty-typed when no values exist)
func (a *ChunkedArray) Factorize(naSentinel int64) ([]int64, *ChunkedArray, error) {
	codeFor := make(map[uint64]int64)
	var order []int
	codes := make([]int64, 0, a.Len())

	pos := 0
	for _, chunk := range a.chunked.Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				codes = append(codes, naSentinel)
				pos++
				continue
			}
			key := hashChunkValue(chunk, i)
			code, ok := codeFor[key]
			if !ok {
				code = int64(len(order))
				codeFor[key] = code
				order = append(order, pos)
			}
			codes = append(codes, code)
			pos++
		}
	}

	builder := arrowarray.NewBuilder(a.mem, a.DataType())
	defer builder.Release()
	for _, p := range order {
		chunk, offset, err := a.resolve("Factorize", p)
		if err != nil {
			return nil, nil, err
		}
		copyChunkValue(builder, chunk, offset)
	}
	arr := builder.NewArray()
	defer arr.Release()
	uniques := a.wrapOwned(arrow.NewChunked(a.DataType(), []arrow.Array{arr}))
	return codes, uniques, nil
}

// ConcatChunked flattens every input's segment sequence into one combined
// ordered sequence, with no merging or compaction. All inputs must share an
// identical segment type.
func ConcatChunked(arrays []*ChunkedArray) (*ChunkedArray, error) {
	if len(arrays) == 0 {
		return nil, errors.NewInvalidInputError("ConcatChunked", "no arrays to concatenate")
	}
	first := arrays[0]
	var names []string
	seen := make(map[string]struct{})
	for _, arr := range arrays {
		name := arr.DataType().String()
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	if len(names) != 1 {
		return nil, errors.NewDTypeMismatchError("ConcatChunked", names)
	}

	var chunks []arrow.Array
	for _, arr := range arrays {
		chunks = append(chunks, arr.chunked.Chunks()...)
	}
	return first.wrapOwned(arrow.NewChunked(first.DataType(), chunks)), nil
}

// String renders a short description for diagnostics
func (a *ChunkedArray) String() string {
	return fmt.Sprintf("ChunkedArray[%s] len=%d segments=%d",
		a.DataType(), a.Len(), len(a.chunked.Chunks()))
}

// hashChunkValue computes a distinct-value key for the element at i.
// Strings hash through xxhash; fixed-width values map through their bit
// patterns.
func hashChunkValue(chunk arrow.Array, i int) uint64 {
	switch arr := chunk.(type) {
	case *arrowarray.String:
		return xxhash.Sum64String(arr.Value(i))
	case *arrowarray.Int64:
		return uint64(arr.Value(i))
	case *arrowarray.Int32:
		return uint64(arr.Value(i))
	case *arrowarray.Float64:
		return math.Float64bits(arr.Value(i))
	case *arrowarray.Float32:
		return uint64(math.Float32bits(arr.Value(i)))
	case *arrowarray.Boolean:
		if arr.Value(i) {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("columnar: unsupported segment type: %T", chunk))
	}
}

// copyChunkValue appends the element at i of chunk to builder, preserving null
func copyChunkValue(builder arrowarray.Builder, chunk arrow.Array, i int) {
	if chunk.IsNull(i) {
		builder.AppendNull()
		return
	}
	switch arr := chunk.(type) {
	case *arrowarray.String:
		builder.(*arrowarray.StringBuilder).Append(arr.Value(i))
	case *arrowarray.Int64:
		builder.(*arrowarray.Int64Builder).Append(arr.Value(i))
	case *arrowarray.Int32:
		builder.(*arrowarray.Int32Builder).Append(arr.Value(i))
	case *arrowarray.Float64:
		builder.(*arrowarray.Float64Builder).Append(arr.Value(i))
	case *arrowarray.Float32:
		builder.(*arrowarray.Float32Builder).Append(arr.Value(i))
	case *arrowarray.Boolean:
		builder.(*arrowarray.BooleanBuilder).Append(arr.Value(i))
	default:
		panic(fmt.Sprintf("columnar: unsupported segment type: %T", chunk))
	}
}

// appendScalar appends a converted scalar (nil = null) to builder
func appendScalar(op string, builder arrowarray.Builder, v any) error {
	if v == nil {
		builder.AppendNull()
		return nil
	}
	switch b := builder.(type) {
	case *arrowarray.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(s)
	case *arrowarray.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(n)
	case *arrowarray.Int32Builder:
		n, ok := v.(int32)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(n)
	case *arrowarray.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(f)
	case *arrowarray.Float32Builder:
		f, ok := v.(float32)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(f)
	case *arrowarray.BooleanBuilder:
		t, ok := v.(bool)
		if !ok {
			return errors.NewDomainError(op, v)
		}
		b.Append(t)
	default:
		return errors.NewDomainError(op, v)
	}
	return nil
}

// boxChunkValue returns the element at i in its user-facing scalar form
func boxChunkValue(chunk arrow.Array, i int) any {
	if chunk.IsNull(i) {
		return nil
	}
	switch arr := chunk.(type) {
	case *arrowarray.String:
		return arr.Value(i)
	case *arrowarray.Int64:
		return arr.Value(i)
	case *arrowarray.Int32:
		return arr.Value(i)
	case *arrowarray.Float64:
		return arr.Value(i)
	case *arrowarray.Float32:
		return arr.Value(i)
	case *arrowarray.Boolean:
		return arr.Value(i)
	default:
		panic(fmt.Sprintf("columnar: unsupported segment type: %T", chunk))
	}
}
