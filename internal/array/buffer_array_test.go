package array

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/index"
	"github.com/paveg/columnar/internal/kernels"
)

func newCodes(t *testing.T, data ...int64) *BufferArray[int64] {
	t.Helper()
	arr, err := FromSlice[int64](CodesFamily[int64]{}, data)
	require.NoError(t, err)
	return arr
}

func newTimestamps(t *testing.T, tz string, data ...int64) *BufferArray[int64] {
	t.Helper()
	arr, err := FromSlice[int64](TimestampFamily{TZ: tz}, data)
	require.NoError(t, err)
	return arr
}

func TestNewBufferArrayRequiresFamily(t *testing.T) {
	_, err := NewBufferArray[int64](nil, buffer.New1D([]int64{1}))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAbstractMethod))
}

func TestIsNAMatchesSentinel(t *testing.T) {
	arr := newCodes(t, 0, -1, 2)
	assert.Equal(t, []bool{false, true, false}, arr.IsNA())
	assert.True(t, arr.HasNA())
}

func TestTakeWithFillProducesMissing(t *testing.T) {
	arr := newCodes(t, 10, 20, 30)

	out, err := arr.Take([]int{-1, 1, -1}, true, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, out.IsNA())
	assert.Equal(t, []int64{-1, 20, -1}, out.Buffer().Data())
}

func TestTakeValidatesFillValueFirst(t *testing.T) {
	arr := newCodes(t, 10, 20, 30)

	_, err := arr.Take([]int{0}, true, "bogus", 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDomain))
}

func TestTakeRoundTrip(t *testing.T) {
	arr := newCodes(t, 5, 6, 7, 8)

	once, err := arr.Take([]int{2, 0, 3, 1}, false, nil, 0)
	require.NoError(t, err)
	back, err := once.Take([]int{1, 3, 0, 2}, false, nil, 0)
	require.NoError(t, err)
	assert.True(t, arr.Equals(back))
}

func TestEquals(t *testing.T) {
	arr := newCodes(t, 1, -1, 3)

	assert.True(t, arr.Equals(arr.Copy()), "array must equal its copy")
	assert.False(t, arr.Equals(newCodes(t, 1, 2, 3)))
	assert.False(t, arr.Equals("not an array"))

	// same physical element type, different dtype metadata
	ts := newTimestamps(t, "UTC", 1, -1, 3)
	assert.False(t, arr.Equals(ts))
}

func TestEqualsTreatsMissingAsEqual(t *testing.T) {
	a := newTimestamps(t, "UTC", 1, TimestampSentinel, 3)
	b := newTimestamps(t, "UTC", 1, TimestampSentinel, 3)
	assert.True(t, a.Equals(b))
}

func TestUniqueFirstOccurrenceOrder(t *testing.T) {
	arr := newCodes(t, 3, 1, 3, 2, 1)
	assert.Equal(t, []int64{3, 1, 2}, arr.Unique().Buffer().Data())
}

func TestArgMinMax(t *testing.T) {
	arr := newCodes(t, 5, 2, 9)

	mins, err := arr.ArgMin(0, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, mins)

	maxs, err := arr.ArgMax(0, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, maxs)
}

func TestArgMinNoSkipNAWithMissing(t *testing.T) {
	arr := newCodes(t, 5, -1, 9)

	_, err := arr.ArgMin(0, false)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotImplemented))

	// without missing values the mode is fine
	clean := newCodes(t, 5, 2, 9)
	_, err = clean.ArgMin(0, false)
	assert.NoError(t, err)
}

func TestArgMinAllMissing(t *testing.T) {
	arr := newCodes(t, -1, -1)

	_, err := arr.ArgMin(0, true)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDomain))

	_, err = arr.ArgMax(0, true)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDomain))
}

func TestConcat(t *testing.T) {
	a := newCodes(t, 1, 2)
	b := newCodes(t, 3)

	single, err := Concat([]*BufferArray[int64]{a}, 0)
	require.NoError(t, err)
	assert.True(t, single.Equals(a), "single-element concat must equal its input")

	both, err := Concat([]*BufferArray[int64]{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, both.Buffer().Data())
}

func TestConcatDTypeMismatch(t *testing.T) {
	utc := newTimestamps(t, "UTC", 1)
	tokyo := newTimestamps(t, "Asia/Tokyo", 2)

	_, err := Concat([]*BufferArray[int64]{utc, tokyo}, 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDTypeMismatch))
	assert.Contains(t, err.Error(), "timestamp[ns,UTC]")
	assert.Contains(t, err.Error(), "timestamp[ns,Asia/Tokyo]")
}

func TestSearchSorted(t *testing.T) {
	arr := newCodes(t, 1, 3, 3, 5)

	left, err := arr.SearchSorted(int64(3), kernels.SideLeft, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	right, err := arr.SearchSorted(int64(3), kernels.SideRight, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, right)

	values := newCodes(t, 0, 5)
	assert.Equal(t, []int{0, 3}, arr.SearchSortedArray(values, kernels.SideLeft, nil))
}

func TestShift(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	out, err := arr.Shift(1, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 1, 2}, out.Buffer().Data())
	assert.Equal(t, []int64{1, 2, 3}, arr.Buffer().Data(), "input must be untouched")

	_, err = arr.Shift(1, 3.14, 0)
	assert.Error(t, err)
}

func TestSetAndGet(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	require.NoError(t, arr.Set(index.Int(1), int64(9)))
	assert.Equal(t, []int64{1, 9, 3}, arr.Buffer().Data())

	require.NoError(t, arr.Set(index.Bools{true, false, true}, int64(0)))
	assert.Equal(t, []int64{0, 9, 0}, arr.Buffer().Data())

	v, err := arr.Get(index.Int(1))
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)

	sub, err := arr.Get(index.NewSpan(1, 3))
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 0}, sub.(*BufferArray[int64]).Buffer().Data())
}

func TestSetGet2DRowAgreement(t *testing.T) {
	arr, err := NewBufferArray[int64](CodesFamily[int64]{}, buffer.New2D([]int64{1, 2, 3, 4}, 2, 2, false))
	require.NoError(t, err)

	// an integer key means the same row for both halves of the contract
	require.NoError(t, arr.Set(index.Int(1), []int64{7, 8}))
	row, err := arr.Get(index.Int(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, row.(*BufferArray[int64]).Buffer().Data())

	require.NoError(t, arr.Set(index.Int(-2), int64(0)))
	first, err := arr.Get(index.Int(0))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, first.(*BufferArray[int64]).Buffer().Data())

	err = arr.Set(index.Int(2), int64(9))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindBounds))
}

func TestSetRejectsBadValueBeforeWriting(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	err := arr.Set(index.Ints{0, 1}, []any{int64(7), "bad"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDomain))
	assert.Equal(t, []int64{1, 2, 3}, arr.Buffer().Data(), "no partial writes")
}

func TestGetBoxesScalars(t *testing.T) {
	arr := newTimestamps(t, "UTC", 0, TimestampSentinel)

	v, err := arr.Get(index.Int(0))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), v)

	missing, err := arr.Get(index.Int(1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFillNA(t *testing.T) {
	pad := kernels.Pad

	t.Run("value fill", func(t *testing.T) {
		arr := newCodes(t, 1, -1, 3)
		out, err := arr.FillNA(int64(7), nil, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 7, 3}, out.Buffer().Data())
		assert.Equal(t, []int64{1, -1, 3}, arr.Buffer().Data())
	})

	t.Run("method fill", func(t *testing.T) {
		arr := newCodes(t, 1, -1, -1, 4)
		out, err := arr.FillNA(nil, &pad, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 1, 1, 4}, out.Buffer().Data())
	})

	t.Run("no missing returns equal copy", func(t *testing.T) {
		arr := newCodes(t, 1, 2, 3)
		out, err := arr.FillNA(nil, nil, 0)
		require.NoError(t, err)
		assert.True(t, out.Equals(arr))
	})

	t.Run("both value and method fails before touching data", func(t *testing.T) {
		arr := newCodes(t, 1, -1, 3)
		_, err := arr.FillNA(int64(7), &pad, 0)
		require.Error(t, err)
		assert.Equal(t, []int64{1, -1, 3}, arr.Buffer().Data())
	})

	t.Run("value validated even with nothing to fill", func(t *testing.T) {
		arr := newCodes(t, 1, 2, 3)
		_, err := arr.FillNA("bogus", nil, 0)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindDomain))
	})
}

func TestPutMask(t *testing.T) {
	arr := newCodes(t, 1, 2, 3, 4)

	require.NoError(t, arr.PutMask([]bool{true, false, true, false}, []any{int64(7), int64(8)}))
	assert.Equal(t, []int64{7, 2, 8, 4}, arr.Buffer().Data())

	err := arr.PutMask([]bool{true, false, true, false}, []any{int64(7)})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindLength))
}

func TestWhere(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	out, err := arr.Where([]bool{true, false, true}, int64(0))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0, 3}, out.Buffer().Data())
	assert.Equal(t, []int64{1, 2, 3}, arr.Buffer().Data())
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	for loc := 0; loc <= arr.Len(); loc++ {
		inserted, err := arr.Insert(loc, int64(99))
		require.NoError(t, err)
		assert.Equal(t, arr.Len()+1, inserted.Len())

		// delete at loc via take skipping it
		keep := make([]int, 0, arr.Len())
		for i := 0; i < inserted.Len(); i++ {
			if i != loc {
				keep = append(keep, i)
			}
		}
		back, err := inserted.Take(keep, false, nil, 0)
		require.NoError(t, err)
		assert.True(t, back.Equals(arr), "insert then delete at %d must round-trip", loc)
	}
}

func TestInsertBounds(t *testing.T) {
	arr := newCodes(t, 1, 2, 3)

	_, err := arr.Insert(4, int64(9))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindBounds))

	out, err := arr.Insert(-1, int64(9))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 9}, out.Buffer().Data())
}

func TestValueCounts(t *testing.T) {
	arr := newCodes(t, 5, -1, 5, 7, -1, -1)

	dropped, err := arr.ValueCounts(true)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, dropped.Values.Buffer().Data())
	assert.Equal(t, []int64{2, 1}, dropped.Counts)
	assert.False(t, dropped.Values.HasNA(), "dropna result must not include a missing entry")

	kept, err := arr.ValueCounts(false)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, -1, 7}, kept.Values.Buffer().Data())
	assert.Equal(t, []int64{2, 3, 1}, kept.Counts)
}

func TestValueCounts2DNotImplemented(t *testing.T) {
	arr, err := NewBufferArray[int64](CodesFamily[int64]{}, buffer.New2D([]int64{1, 2, 3, 4}, 2, 2, false))
	require.NoError(t, err)

	_, err = arr.ValueCounts(true)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotImplemented))
}

func TestQuantile(t *testing.T) {
	arr := newCodes(t, 1, 2, 3, 4, -1)

	out, err := arr.Quantile([]float64{0, 0.5, 1}, "linear")
	require.NoError(t, err)
	assert.Equal(t, 1, out.NDim(), "1-D input degenerates back to 1-D")
	assert.Equal(t, []int64{1, 2, 4}, out.Buffer().Data())
}

func TestQuantile2D(t *testing.T) {
	arr, err := NewBufferArray[int64](CodesFamily[int64]{}, buffer.New2D([]int64{1, 3, -1, -1}, 2, 2, false))
	require.NoError(t, err)

	out, err := arr.Quantile([]float64{0.5}, "linear")
	require.NoError(t, err)
	assert.Equal(t, 2, out.NDim())
	assert.Equal(t, []int64{2}, out.Buffer().Row(0))
	assert.Equal(t, []int64{-1}, out.Buffer().Row(1), "all-missing slice takes the fill value")
}

func TestView(t *testing.T) {
	arr := newTimestamps(t, "UTC", 1, 2, 3)

	ints, err := arr.View(CodesFamily[int64]{})
	require.NoError(t, err)
	assert.Equal(t, "int64[codes]", ints.DType().String())

	// shares storage: a view sees writes to the original
	require.NoError(t, arr.Set(index.Int(0), int64(9)))
	assert.Equal(t, int64(9), ints.Buffer().Data()[0])
}

func TestValuesForArgsortExposesRawBuffer(t *testing.T) {
	arr := newCodes(t, 3, -1, 2)
	assert.Equal(t, []int64{3, -1, 2}, arr.ValuesForArgsort())
}

func TestFactorizeDense(t *testing.T) {
	arr := newCodes(t, 7, -1, 8, 7)

	codes, uniques := arr.Factorize(-1)
	assert.Equal(t, []int64{0, -1, 1, 0}, codes)
	assert.Equal(t, []int64{7, 8}, uniques.Buffer().Data())

	rebuilt := arr.FromFactorized(uniques.Buffer().Data())
	assert.True(t, rebuilt.Equals(uniques))
}

func TestEmptyArray(t *testing.T) {
	arr, err := EmptyArray[int64](CodesFamily[int64]{}, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, arr.Len())
	assert.Equal(t, 1, arr.NDim())

	wide, err := EmptyArray[int64](CodesFamily[int64]{}, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, wide.NDim())
	assert.Equal(t, 3, wide.Len())
}

func TestFillMaskInplace(t *testing.T) {
	arr := newCodes(t, 1, -1, 3)
	mask := arr.IsNA()

	require.NoError(t, arr.FillMaskInplace(kernels.Pad, 0, mask))
	assert.Equal(t, []int64{1, 1, 3}, arr.Buffer().Data())
	assert.False(t, mask[1], "filled positions are cleared in the mask")
}
