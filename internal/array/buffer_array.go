package array

import (
	"fmt"
	"sort"

	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/dtype"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/index"
	"github.com/paveg/columnar/internal/kernels"
)

// BufferArray is the buffer-backed realization of the logical array contract:
// one contiguous, fixed-width, mutable 1-D or 2-D buffer plus a sentinel for
// missing values. Every transformation returns a new instance over a fresh
// buffer; only Set, PutMask and FillMaskInplace mutate in place.
type BufferArray[T buffer.Element] struct {
	buf *buffer.Buffer[T]
	fam Family[T]
}

// NewBufferArray wraps buf with the given family. The array takes exclusive
// ownership of buf.
func NewBufferArray[T buffer.Element](fam Family[T], buf *buffer.Buffer[T]) (*BufferArray[T], error) {
	if fam == nil {
		return nil, errors.NewAbstractMethodError("NewBufferArray", "Family")
	}
	return &BufferArray[T]{buf: buf, fam: fam}, nil
}

// FromSlice builds a 1-D array owning a copy of data
func FromSlice[T buffer.Element](fam Family[T], data []T) (*BufferArray[T], error) {
	owned := make([]T, len(data))
	copy(owned, data)
	return NewBufferArray(fam, buffer.New1D(owned))
}

// EmptyArray allocates an uninitialized array of the given shape, analogous to
// allocating a zero-length array from the dtype to discover the element type
// and then reserving storage
func EmptyArray[T buffer.Element](fam Family[T], rows, cols int) (*BufferArray[T], error) {
	if rows <= 1 {
		return NewBufferArray(fam, buffer.Empty[T](cols))
	}
	return NewBufferArray(fam, buffer.Empty2D[T](rows, cols))
}

func (a *BufferArray[T]) wrap(buf *buffer.Buffer[T]) *BufferArray[T] {
	return &BufferArray[T]{buf: buf, fam: a.fam}
}

// Len returns the logical length: element count for 1-D, row count for 2-D
func (a *BufferArray[T]) Len() int {
	if a.buf.NDim() == 2 {
		return a.buf.Rows()
	}
	return a.buf.Len()
}

// NDim returns 1 or 2
func (a *BufferArray[T]) NDim() int { return a.buf.NDim() }

// NBytes returns the backing storage size in bytes
func (a *BufferArray[T]) NBytes() int { return a.buf.NBytes() }

// DType returns the logical dtype, metadata included
func (a *BufferArray[T]) DType() dtype.DType { return a.fam.DType() }

// Family exposes the extension hooks of this array's physical family
func (a *BufferArray[T]) Family() Family[T] { return a.fam }

// Buffer exposes the backing buffer for host-layer consumers
func (a *BufferArray[T]) Buffer() *buffer.Buffer[T] { return a.buf }

// IsNA returns the missing-value mask in memory order
func (a *BufferArray[T]) IsNA() []bool {
	mask := make([]bool, a.buf.Len())
	for i, v := range a.buf.Data() {
		mask[i] = a.fam.IsNA(v)
	}
	return mask
}

// HasNA reports whether any value is missing
func (a *BufferArray[T]) HasNA() bool {
	for _, v := range a.buf.Data() {
		if a.fam.IsNA(v) {
			return true
		}
	}
	return false
}

// Copy returns a deep copy
func (a *BufferArray[T]) Copy() *BufferArray[T] {
	return a.wrap(a.buf.Copy())
}

// View reinterprets the backing buffer under another family without copying.
// Only same-width reinterpretation is supported (the temporal/integer code
// families all share 64-bit elements); cross-width targets fail with a domain
// error.
func (a *BufferArray[T]) View(target Family[T]) (*BufferArray[T], error) {
	if target == nil {
		return a.wrap(a.buf), nil
	}
	if target.DType().Width != a.fam.DType().Width {
		return nil, errors.NewInvalidInputError("View",
			fmt.Sprintf("cannot reinterpret %s as %s: element widths differ", a.fam.DType(), target.DType()))
	}
	return &BufferArray[T]{buf: a.buf, fam: target}, nil
}

// Take gathers elements at indices along axis. With allowFill, -1 marks
// "insert fillValue here" and fillValue is first validated into the scalar
// domain; without it, negative indices count from the end.
func (a *BufferArray[T]) Take(indices []int, allowFill bool, fillValue any, axis int) (*BufferArray[T], error) {
	var fill T
	if allowFill {
		var err error
		fill, err = a.fam.ValidateScalar("Take", fillValue)
		if err != nil {
			return nil, err
		}
	}
	out, err := kernels.Take(a.buf, indices, allowFill, fill, axis)
	if err != nil {
		return nil, err
	}
	return a.wrap(out), nil
}

// Equals reports structural equality: same concrete type, same dtype, and
// element-wise equivalent buffers with missing markers equal to each other.
// It never fails; mismatched types or dtypes simply compare false.
func (a *BufferArray[T]) Equals(other any) bool {
	b, ok := other.(*BufferArray[T])
	if !ok {
		return false
	}
	if !a.fam.DType().Equal(b.fam.DType()) {
		return false
	}
	return buffer.Equal(a.buf, b.buf, func(x, y T) bool {
		return a.fam.IsNA(x) && b.fam.IsNA(y)
	})
}

// Unique returns a new 1-D array of the distinct buffer values in
// first-occurrence order
func (a *BufferArray[T]) Unique() *BufferArray[T] {
	return a.wrap(buffer.New1D(kernels.Unique(a.buf.Data())))
}

// ArgMin returns the position of the smallest value along axis.
// With skipna disabled and any missing value present it fails with a
// not-implemented condition: comparisons against missing have no defined
// tie-break in that mode. A slice with no valid values at all fails with a
// domain error.
func (a *BufferArray[T]) ArgMin(axis int, skipna bool) ([]int, error) {
	return a.argExtreme(axis, skipna, false, "ArgMin")
}

// ArgMax returns the position of the largest value along axis; see ArgMin for
// the skipna contract
func (a *BufferArray[T]) ArgMax(axis int, skipna bool) ([]int, error) {
	return a.argExtreme(axis, skipna, true, "ArgMax")
}

func (a *BufferArray[T]) argExtreme(axis int, skipna, wantMax bool, op string) ([]int, error) {
	if !skipna && a.HasNA() {
		return nil, errors.NewNotImplementedError(op, "skipna=false with missing values present")
	}
	if a.buf.NDim() == 1 {
		idx := kernels.ArgExtreme1D(a.buf.Data(), a.fam.IsNA, wantMax)
		if idx < 0 {
			return nil, errors.NewInvalidInputError(op, "all values are missing")
		}
		return []int{idx}, nil
	}
	rows, cols := a.buf.Rows(), a.buf.Cols()
	if axis == 1 {
		out := make([]int, rows)
		for r := 0; r < rows; r++ {
			out[r] = kernels.ArgExtreme1D(a.buf.Row(r), a.fam.IsNA, wantMax)
			if out[r] < 0 {
				return nil, errors.NewInvalidInputError(op, "all values are missing")
			}
		}
		return out, nil
	}
	out := make([]int, cols)
	col := make([]T, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = a.buf.At(r, c)
		}
		out[c] = kernels.ArgExtreme1D(col, a.fam.IsNA, wantMax)
		if out[c] < 0 {
			return nil, errors.NewInvalidInputError(op, "all values are missing")
		}
	}
	return out, nil
}

// Concat concatenates arrays along axis. Every input must share an identical
// dtype, metadata included; otherwise it fails with a dtype-mismatch error
// naming the distinct dtypes seen.
func Concat[T buffer.Element](arrays []*BufferArray[T], axis int) (*BufferArray[T], error) {
	if len(arrays) == 0 {
		return nil, errors.NewInvalidInputError("Concat", "no arrays to concatenate")
	}
	seen := make(map[string]struct{})
	var names []string
	for _, arr := range arrays {
		name := arr.DType().String()
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	if len(names) != 1 {
		sort.Strings(names)
		return nil, errors.NewDTypeMismatchError("Concat", names)
	}

	first := arrays[0]
	if first.buf.NDim() == 1 {
		var data []T
		for _, arr := range arrays {
			data = append(data, arr.buf.Data()...)
		}
		return first.wrap(buffer.New1D(data)), nil
	}

	if axis == 0 {
		cols := first.buf.Cols()
		rows := 0
		for _, arr := range arrays {
			rows += arr.buf.Rows()
		}
		out := buffer.Empty2D[T](rows, cols)
		r0 := 0
		for _, arr := range arrays {
			for r := 0; r < arr.buf.Rows(); r++ {
				for c := 0; c < cols; c++ {
					out.SetAt(r0+r, c, arr.buf.At(r, c))
				}
			}
			r0 += arr.buf.Rows()
		}
		return first.wrap(out), nil
	}

	rows := first.buf.Rows()
	cols := 0
	for _, arr := range arrays {
		cols += arr.buf.Cols()
	}
	out := buffer.Empty2D[T](rows, cols)
	c0 := 0
	for _, arr := range arrays {
		for r := 0; r < rows; r++ {
			for c := 0; c < arr.buf.Cols(); c++ {
				out.SetAt(r, c0+c, arr.buf.At(r, c))
			}
		}
		c0 += arr.buf.Cols()
	}
	return first.wrap(out), nil
}

// SearchSorted returns the insertion point of value in the backing buffer.
// A 2-D array is flattened in memory order first (the 1-D adapter); the value
// is validated into the scalar domain.
func (a *BufferArray[T]) SearchSorted(value any, side kernels.SearchSide, sorter []int) (int, error) {
	v, err := a.fam.ValidateScalar("SearchSorted", value)
	if err != nil {
		return 0, err
	}
	flat := a.buf.Ravel()
	return kernels.SearchSorted(flat.Data(), v, side, sorter), nil
}

// SearchSortedArray is the array-valued form of SearchSorted: values of this
// array kind are first converted to their plain buffer
func (a *BufferArray[T]) SearchSortedArray(values *BufferArray[T], side kernels.SearchSide, sorter []int) []int {
	flat := a.buf.Ravel()
	out := make([]int, values.buf.Len())
	for i, v := range values.buf.Data() {
		out[i] = kernels.SearchSorted(flat.Data(), v, side, sorter)
	}
	return out
}

// Shift shifts elements by periods along axis, filling vacated slots with a
// validated fill value
func (a *BufferArray[T]) Shift(periods int, fillValue any, axis int) (*BufferArray[T], error) {
	fill, err := a.fam.ValidateScalar("Shift", fillValue)
	if err != nil {
		return nil, err
	}
	return a.wrap(kernels.Shift(a.buf, periods, axis, fill)), nil
}

// Set writes value at the positions selected by key, in place. On a 2-D array
// an integer key addresses a whole row, mirroring Get; every other key is
// normalized against the memory-order length. The value is validated into the
// scalar domain before any write, so partial writes never happen.
func (a *BufferArray[T]) Set(key index.Key, value any) error {
	if k, ok := key.(index.Int); ok && a.buf.NDim() == 2 {
		r := int(k)
		if r < 0 {
			r += a.buf.Rows()
		}
		if r < 0 || r >= a.buf.Rows() {
			return errors.NewBoundsError("Set", int(k), a.buf.Rows())
		}
		vals, err := a.validateValues("Set", value, a.buf.Cols())
		if err != nil {
			return err
		}
		for c, v := range vals {
			a.buf.SetAt(r, c, v)
		}
		return nil
	}

	indices, err := index.ToIndices("Set", key, a.buf.Len())
	if err != nil {
		return err
	}
	vals, err := a.validateValues("Set", value, len(indices))
	if err != nil {
		return err
	}
	data := a.buf.Data()
	for i, idx := range indices {
		data[idx] = vals[i]
	}
	return nil
}

// Get resolves key against the array. An integer key yields a boxed scalar
// for 1-D arrays (row array for 2-D) without allocating a new array for the
// scalar path; any other key yields a new instance over the sub-buffer.
func (a *BufferArray[T]) Get(key index.Key) (any, error) {
	if k, ok := key.(index.Int); ok {
		if a.buf.NDim() == 1 {
			i := int(k)
			if i < 0 {
				i += a.buf.Len()
			}
			if i < 0 || i >= a.buf.Len() {
				return nil, errors.NewBoundsError("Get", int(k), a.buf.Len())
			}
			return a.fam.Box(a.buf.Data()[i]), nil
		}
		r := int(k)
		if r < 0 {
			r += a.buf.Rows()
		}
		if r < 0 || r >= a.buf.Rows() {
			return nil, errors.NewBoundsError("Get", int(k), a.buf.Rows())
		}
		return a.wrap(buffer.New1D(a.buf.Row(r))), nil
	}

	indices, err := index.ToIndices("Get", key, a.buf.Len())
	if err != nil {
		return nil, err
	}
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = a.buf.Data()[idx]
	}
	return a.wrap(buffer.New1D(out)), nil
}

// FillNA returns a new array with missing values filled. Exactly one of value
// and method may be given; with neither, or with no missing values present,
// the result is a copy (the value, if any, is still validated for side-effect
// consistency).
func (a *BufferArray[T]) FillNA(value any, method *kernels.FillMethod, limit int) (*BufferArray[T], error) {
	if err := index.ValidateFillNAKwargs(value != nil, method != nil); err != nil {
		return nil, err
	}

	mask := a.IsNA()
	if !anyTrue(mask) {
		if value != nil {
			if _, err := a.fam.ValidateScalar("FillNA", value); err != nil {
				return nil, err
			}
		}
		return a.Copy(), nil
	}

	if method != nil {
		out := a.Copy()
		kernels.PadOrBackfill(out.buf, *method, limit, mask)
		return out, nil
	}

	fill, err := a.fam.ValidateScalar("FillNA", value)
	if err != nil {
		return nil, err
	}
	out := a.Copy()
	data := out.buf.Data()
	for i, missing := range mask {
		if missing {
			data[i] = fill
		}
	}
	return out, nil
}

// FillMaskInplace runs the directional-fill kernel over the owned buffer,
// mutating it and the mask in place
func (a *BufferArray[T]) FillMaskInplace(method kernels.FillMethod, limit int, mask []bool) error {
	if len(mask) != a.buf.Len() {
		return errors.NewLengthMismatchError("FillMaskInplace", a.buf.Len(), len(mask))
	}
	kernels.PadOrBackfill(a.buf, method, limit, mask)
	return nil
}

// PutMask writes value at mask's true positions, in place. A scalar value is
// broadcast; a sequence is positionally aligned to the true-count of mask.
func (a *BufferArray[T]) PutMask(mask []bool, value any) error {
	if len(mask) != a.buf.Len() {
		return errors.NewLengthMismatchError("PutMask", a.buf.Len(), len(mask))
	}
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	vals, err := a.validateValues("PutMask", value, count)
	if err != nil {
		return err
	}
	data := a.buf.Data()
	vi := 0
	for i, m := range mask {
		if m {
			data[i] = vals[vi]
			vi++
		}
	}
	return nil
}

// Where returns a new array selecting the buffer where mask is true, else the
// validated value
func (a *BufferArray[T]) Where(mask []bool, value any) (*BufferArray[T], error) {
	if len(mask) != a.buf.Len() {
		return nil, errors.NewLengthMismatchError("Where", a.buf.Len(), len(mask))
	}
	fill, err := a.fam.ValidateScalar("Where", value)
	if err != nil {
		return nil, err
	}
	out := a.Copy()
	data := out.buf.Data()
	for i, m := range mask {
		if !m {
			data[i] = fill
		}
	}
	return out, nil
}

// Insert returns a new array with item spliced in at loc. Negative locations
// follow list insert semantics; loc is bounds-checked against [-n-1, n].
func (a *BufferArray[T]) Insert(loc int, item any) (*BufferArray[T], error) {
	loc, err := index.ValidateInsertLoc(loc, a.buf.Len())
	if err != nil {
		return nil, err
	}
	code, err := a.fam.ValidateScalar("Insert", item)
	if err != nil {
		return nil, err
	}
	src := a.buf.Data()
	out := make([]T, 0, len(src)+1)
	out = append(out, src[:loc]...)
	out = append(out, code)
	out = append(out, src[loc:]...)
	return a.wrap(buffer.New1D(out)), nil
}

// CountedValues pairs distinct values with their occurrence counts, in the
// order produced by the counting kernel
type CountedValues[T buffer.Element] struct {
	Values *BufferArray[T]
	Counts []int64
}

// ValueCounts counts distinct values of a 1-D array; dropna excludes missing
// positions. Undefined for 2-D arrays.
func (a *BufferArray[T]) ValueCounts(dropna bool) (*CountedValues[T], error) {
	if a.buf.NDim() != 1 {
		return nil, errors.NewNotImplementedError("ValueCounts", "not defined for 2-D arrays")
	}
	data := a.buf.Data()
	if dropna {
		kept := make([]T, 0, len(data))
		for _, v := range data {
			if !a.fam.IsNA(v) {
				kept = append(kept, v)
			}
		}
		data = kept
	}
	values, counts := kernels.ValueCounts(data)
	if values == nil {
		values = []T{}
	}
	return &CountedValues[T]{Values: a.wrap(buffer.New1D(values)), Counts: counts}, nil
}

// Quantile computes per-quantile interpolated results honoring the missing
// mask, with the sentinel filling degenerate all-missing slices. A 1-D input
// degenerates back to a 1-D result of len(qs).
func (a *BufferArray[T]) Quantile(qs []float64, interpolation string) (*BufferArray[T], error) {
	interp, err := kernels.ParseInterpolation(interpolation)
	if err != nil {
		return nil, err
	}
	mask := a.IsNA()
	res := kernels.QuantileWithMask(a.buf, mask, a.fam.Sentinel(), qs, interp)
	cast := a.fam.CastQuantileResult(res.Data())
	if a.buf.NDim() == 1 {
		return a.wrap(buffer.New1D(cast)), nil
	}
	return a.wrap(buffer.New2D(cast, a.buf.Rows(), len(qs), false)), nil
}

// ValuesForFactorize exposes the raw buffer and sentinel for the dictionary-
// encoding kernel
func (a *BufferArray[T]) ValuesForFactorize() ([]T, T) {
	return a.buf.Data(), a.fam.Sentinel()
}

// ValuesForArgsort exposes the raw buffer for the host's sorting machinery;
// missing positions carry the sentinel and sort with it
func (a *BufferArray[T]) ValuesForArgsort() []T {
	return a.buf.Data()
}

// Factorize dictionary-encodes the values: codes with naSentinel at missing
// positions, plus a new array of the distinct non-missing values
func (a *BufferArray[T]) Factorize(naSentinel int64) ([]int64, *BufferArray[T]) {
	codes, uniques := kernels.Factorize(a.buf.Data(), a.fam.IsNA, naSentinel)
	if uniques == nil {
		uniques = []T{}
	}
	return codes, a.wrap(buffer.New1D(uniques))
}

// FromFactorized reconstructs an array of this family from factorized values
func (a *BufferArray[T]) FromFactorized(values []T) *BufferArray[T] {
	owned := make([]T, len(values))
	copy(owned, values)
	return a.wrap(buffer.New1D(owned))
}

// String renders a short description for diagnostics
func (a *BufferArray[T]) String() string {
	return fmt.Sprintf("BufferArray[%s] len=%d ndim=%d", a.fam.DType(), a.Len(), a.buf.NDim())
}

func (a *BufferArray[T]) validateValues(op string, value any, n int) ([]T, error) {
	switch v := value.(type) {
	case []T:
		if len(v) != n {
			return nil, errors.NewLengthMismatchError(op, n, len(v))
		}
		out := make([]T, n)
		copy(out, v)
		return out, nil
	case []any:
		if len(v) != n {
			return nil, errors.NewLengthMismatchError(op, n, len(v))
		}
		out := make([]T, n)
		for i, item := range v {
			elem, err := a.fam.ValidateScalar(op, item)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	default:
		elem, err := a.fam.ValidateScalar(op, value)
		if err != nil {
			return nil, err
		}
		out := make([]T, n)
		for i := range out {
			out[i] = elem
		}
		return out, nil
	}
}

func anyTrue(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}
