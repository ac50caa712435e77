package array

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"

	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/index"
)

// ConverterFor returns the setitem converter matching an Arrow segment type
func ConverterFor(dt arrow.DataType) (SetitemConverter, error) {
	switch dt.ID() {
	case arrow.STRING:
		return StringConverter{}, nil
	case arrow.INT64:
		return Int64Converter{}, nil
	case arrow.INT32:
		return Int32Converter{}, nil
	case arrow.FLOAT64:
		return Float64Converter{}, nil
	case arrow.FLOAT32:
		return Float32Converter{}, nil
	case arrow.BOOL:
		return BoolConverter{}, nil
	default:
		return nil, errors.NewAbstractMethodError("ConverterFor", "SetitemConverter for "+dt.String())
	}
}

// StringConverter maps scalars into the string segment domain
type StringConverter struct{}

func (StringConverter) ConvertScalar(op string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, errors.NewDomainError(op, v)
}

// Int64Converter maps scalars into the 64-bit integer segment domain
type Int64Converter struct{}

func (Int64Converter) ConvertScalar(op string, v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	default:
		return nil, errors.NewDomainError(op, v)
	}
}

// Int32Converter maps scalars into the 32-bit integer segment domain
type Int32Converter struct{}

func (Int32Converter) ConvertScalar(op string, v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int32:
		return n, nil
	case int:
		if int(int32(n)) != n {
			return nil, errors.NewDomainError(op, v)
		}
		return int32(n), nil
	case int64:
		if int64(int32(n)) != n {
			return nil, errors.NewDomainError(op, v)
		}
		return int32(n), nil
	default:
		return nil, errors.NewDomainError(op, v)
	}
}

// Float64Converter maps scalars into the 64-bit float segment domain
type Float64Converter struct{}

func (Float64Converter) ConvertScalar(op string, v any) (any, error) {
	switch f := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	default:
		return nil, errors.NewDomainError(op, v)
	}
}

// Float32Converter maps scalars into the 32-bit float segment domain
type Float32Converter struct{}

func (Float32Converter) ConvertScalar(op string, v any) (any, error) {
	switch f := v.(type) {
	case nil:
		return nil, nil
	case float32:
		return f, nil
	case float64:
		return float32(f), nil
	default:
		return nil, errors.NewDomainError(op, v)
	}
}

// BoolConverter maps scalars into the boolean segment domain
type BoolConverter struct{}

func (BoolConverter) ConvertScalar(op string, v any) (any, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return b, nil
	default:
		return nil, errors.NewDomainError(op, v)
	}
}

// Set writes value at the positions selected by key, rebinding the segment
// sequence to a freshly built one with the same boundary layout. Segment
// boundaries may carry performance or external-reference significance, so the
// chunk-length layout is preserved exactly.
//
// The key is normalized into sorted ascending absolute positions and value is
// permuted identically; a scalar value broadcasts, a sequence must match the
// indexer length. All validation happens before any segment is rebuilt.
func (a *ChunkedArray) Set(key index.Key, value any) error {
	if a.conv == nil {
		return errors.NewAbstractMethodError("Set", "SetitemConverter")
	}
	indices, err := index.ToIndices("Set", key, a.Len())
	if err != nil {
		return err
	}

	values, err := a.convertSetitemValues("Set", value, len(indices))
	if err != nil {
		return err
	}

	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return indices[order[x]] < indices[order[y]] })
	sortedIdx := make([]int, len(indices))
	sortedVal := make([]any, len(values))
	for i, o := range order {
		sortedIdx[i] = indices[o]
		sortedVal[i] = values[o]
	}

	rebuilt, err := a.setViaChunkIteration(sortedIdx, sortedVal)
	if err != nil {
		return err
	}
	old := a.chunked
	a.chunked = rebuilt
	old.Release()
	return nil
}

// convertSetitemValues maps value into n converted scalars: scalars broadcast,
// sequences are converted element-wise and length-checked
func (a *ChunkedArray) convertSetitemValues(op string, value any, n int) ([]any, error) {
	if seq, ok := value.([]any); ok {
		if len(seq) != n {
			return nil, errors.NewLengthMismatchError(op, n, len(seq))
		}
		out := make([]any, n)
		for i, v := range seq {
			converted, err := a.conv.ConvertScalar(op, v)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	converted, err := a.conv.ConvertScalar(op, value)
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		out[i] = converted
	}
	return out, nil
}

// setViaChunkIteration walks the existing segment boundaries once, consuming
// the sorted index/value runs segment by segment. Indices falling within a
// segment's range are localized to segment-relative offsets; segments with no
// matching indices pass through unchanged. Assumes indices are sorted.
func (a *ChunkedArray) setViaChunkIteration(indices []int, values []any) (*arrow.Chunked, error) {
	newChunks := make([]arrow.Array, 0, len(a.chunked.Chunks()))
	release := func() {
		for _, c := range newChunks {
			c.Release()
		}
	}

	stop := 0
	for _, chunk := range a.chunked.Chunks() {
		start := stop
		stop += chunk.Len()
		if len(indices) == 0 || stop <= indices[0] {
			chunk.Retain()
			newChunks = append(newChunks, chunk)
			continue
		}

		n := sort.SearchInts(indices, stop)
		local := make([]int, n)
		for i := 0; i < n; i++ {
			local[i] = indices[i] - start
		}
		chunkValues := values[:n]
		indices = indices[n:]
		values = values[n:]

		replaced, err := a.replaceWithIndices(chunk, local, chunkValues)
		if err != nil {
			release()
			return nil, err
		}
		newChunks = append(newChunks, replaced)
	}

	rebuilt := arrow.NewChunked(a.DataType(), newChunks)
	release()
	return rebuilt, nil
}

// replaceWithIndices is the segment-local splice: replace the elements of
// chunk at the given segment-relative indices with values.
//
// Fast path: a contiguous index run slices the segment into before/
// replacement/after parts and concatenates, with no mask materialization.
// General path: a boolean mask of segment length drives an element-wise
// rebuild. The caller owns the returned segment.
func (a *ChunkedArray) replaceWithIndices(chunk arrow.Array, indices []int, values []any) (arrow.Array, error) {
	n := len(indices)
	if n == 0 {
		chunk.Retain()
		return chunk, nil
	}

	start, stop := indices[0], indices[n-1]
	if stop-start == n-1 {
		replacement, err := a.buildSegment(values)
		if err != nil {
			return nil, err
		}
		defer replacement.Release()

		parts := make([]arrow.Array, 0, 3)
		if start > 0 {
			before := arrowarray.NewSlice(chunk, 0, int64(start))
			defer before.Release()
			parts = append(parts, before)
		}
		parts = append(parts, replacement)
		if stop+1 < chunk.Len() {
			after := arrowarray.NewSlice(chunk, int64(stop+1), int64(chunk.Len()))
			defer after.Release()
			parts = append(parts, after)
		}
		if len(parts) == 1 {
			parts[0].Retain()
			return parts[0], nil
		}
		return arrowarray.Concatenate(parts, a.mem)
	}

	return a.replaceWithMask(chunk, indices, values)
}

// replaceWithMask is the general path: materialize a mask over the segment and
// rebuild it element by element, substituting values at masked positions
func (a *ChunkedArray) replaceWithMask(chunk arrow.Array, indices []int, values []any) (arrow.Array, error) {
	mask := make([]bool, chunk.Len())
	at := make([]int, chunk.Len())
	for i, idx := range indices {
		mask[idx] = true
		at[idx] = i
	}

	builder := arrowarray.NewBuilder(a.mem, chunk.DataType())
	defer builder.Release()
	for i := 0; i < chunk.Len(); i++ {
		if mask[i] {
			if err := appendScalar("Set", builder, values[at[i]]); err != nil {
				return nil, err
			}
			continue
		}
		copyChunkValue(builder, chunk, i)
	}
	return builder.NewArray(), nil
}

// buildSegment materializes one segment from converted scalars
func (a *ChunkedArray) buildSegment(values []any) (arrow.Array, error) {
	builder := arrowarray.NewBuilder(a.mem, a.DataType())
	defer builder.Release()
	for _, v := range values {
		if err := appendScalar("Set", builder, v); err != nil {
			return nil, err
		}
	}
	return builder.NewArray(), nil
}
