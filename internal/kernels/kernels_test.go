package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

func TestTake1D(t *testing.T) {
	buf := buffer.New1D([]int64{10, 20, 30})

	tests := []struct {
		name      string
		indices   []int
		allowFill bool
		fill      int64
		expected  []int64
		wantErr   bool
	}{
		{name: "plain gather", indices: []int{2, 0, 1}, expected: []int64{30, 10, 20}},
		{name: "negative from end", indices: []int{-1, -3}, expected: []int64{30, 10}},
		{name: "fill at minus one", indices: []int{-1, 1, -1}, allowFill: true, fill: -9, expected: []int64{-9, 20, -9}},
		{name: "out of bounds", indices: []int{3}, wantErr: true},
		{name: "negative beyond length", indices: []int{-4}, wantErr: true},
		{name: "minus two with fill", indices: []int{-2}, allowFill: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Take(buf, tt.indices, tt.allowFill, tt.fill, 0)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindBounds))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Data())
		})
	}
}

func TestTake2DAxes(t *testing.T) {
	// 2x3 row major:
	//   1 2 3
	//   4 5 6
	buf := buffer.New2D([]int64{1, 2, 3, 4, 5, 6}, 2, 3, false)

	rows, err := Take(buf, []int{1, 0}, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5, 6}, rows.Row(0))
	assert.Equal(t, []int64{1, 2, 3}, rows.Row(1))

	cols, err := Take(buf, []int{2, 2, 0}, false, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 3, 1}, cols.Row(0))
	assert.Equal(t, []int64{6, 6, 4}, cols.Row(1))
}

func TestTakeRoundTripPermutation(t *testing.T) {
	buf := buffer.New1D([]int64{5, 6, 7, 8})
	perm := []int{2, 0, 3, 1}
	inverse := []int{1, 3, 0, 2}

	once, err := Take(buf, perm, false, 0, 0)
	require.NoError(t, err)
	back, err := Take(once, inverse, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, buf.Data(), back.Data())
}

func TestShift(t *testing.T) {
	buf := buffer.New1D([]int64{1, 2, 3, 4})

	tests := []struct {
		name     string
		periods  int
		expected []int64
	}{
		{name: "forward", periods: 1, expected: []int64{-1, 1, 2, 3}},
		{name: "backward", periods: -2, expected: []int64{3, 4, -1, -1}},
		{name: "zero copies", periods: 0, expected: []int64{1, 2, 3, 4}},
		{name: "past length", periods: 9, expected: []int64{-1, -1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Shift(buf, tt.periods, 0, int64(-1))
			assert.Equal(t, tt.expected, out.Data())
		})
	}
}

func TestPadOrBackfill(t *testing.T) {
	tests := []struct {
		name     string
		method   FillMethod
		limit    int
		data     []int64
		mask     []bool
		expected []int64
	}{
		{
			name:     "pad",
			method:   Pad,
			data:     []int64{1, -1, -1, 4},
			mask:     []bool{false, true, true, false},
			expected: []int64{1, 1, 1, 4},
		},
		{
			name:     "backfill",
			method:   Backfill,
			data:     []int64{-1, -1, 3, -1},
			mask:     []bool{true, true, false, true},
			expected: []int64{3, 3, 3, -1},
		},
		{
			name:     "pad with limit",
			method:   Pad,
			limit:    1,
			data:     []int64{1, -1, -1, 4},
			mask:     []bool{false, true, true, false},
			expected: []int64{1, 1, -1, 4},
		},
		{
			name:     "leading missing stays",
			method:   Pad,
			data:     []int64{-1, 2},
			mask:     []bool{true, false},
			expected: []int64{-1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buffer.New1D(tt.data)
			PadOrBackfill(buf, tt.method, tt.limit, tt.mask)
			assert.Equal(t, tt.expected, buf.Data())
		})
	}
}

func TestPadOrBackfillRowsIndependent(t *testing.T) {
	// two rows, fill must not leak across row boundaries
	buf := buffer.New2D([]int64{1, -1, -1, 9}, 2, 2, false)
	mask := []bool{false, true, true, false}

	PadOrBackfill(buf, Pad, 0, mask)

	assert.Equal(t, []int64{1, 1}, buf.Row(0))
	assert.Equal(t, []int64{-1, 9}, buf.Row(1))
	assert.True(t, mask[2], "leading missing in second row must remain masked")
}

func TestQuantileWithMask(t *testing.T) {
	buf := buffer.New2D([]int64{1, 2, 3, 4, -1, -1, -1, -1}, 2, 4, false)
	mask := []bool{false, false, false, false, true, true, true, true}
	qs := []float64{0, 0.5, 1}

	out := QuantileWithMask(buf, mask, int64(-1), qs, Linear)

	assert.Equal(t, []float64{1, 2.5, 4}, out.Row(0))
	// all-missing row degenerates to the fill value
	assert.Equal(t, []float64{-1, -1, -1}, out.Row(1))
}

func TestQuantileInterpolations(t *testing.T) {
	buf := buffer.New1D([]int64{10, 20})
	mask := []bool{false, false}
	qs := []float64{0.5}

	tests := []struct {
		name     string
		interp   Interpolation
		expected float64
	}{
		{name: "linear", interp: Linear, expected: 15},
		{name: "lower", interp: Lower, expected: 10},
		{name: "higher", interp: Higher, expected: 20},
		{name: "nearest", interp: Nearest, expected: 10},
		{name: "midpoint", interp: Midpoint, expected: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := QuantileWithMask(buf, mask, int64(0), qs, tt.interp)
			assert.Equal(t, tt.expected, out.At(0, 0))
		})
	}
}

func TestParseInterpolation(t *testing.T) {
	got, err := ParseInterpolation("midpoint")
	require.NoError(t, err)
	assert.Equal(t, Midpoint, got)

	_, err = ParseInterpolation("cubic")
	assert.Error(t, err)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, Unique([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, Unique([]int64{}))
}

func TestValueCounts(t *testing.T) {
	values, counts := ValueCounts([]int64{5, 5, 7, 5, 7, 9})
	assert.Equal(t, []int64{5, 7, 9}, values)
	assert.Equal(t, []int64{3, 2, 1}, counts)
}

func TestFactorize(t *testing.T) {
	isNA := func(v int64) bool { return v == -1 }

	codes, uniques := Factorize([]int64{7, -1, 8, 7}, isNA, -1)
	assert.Equal(t, []int64{0, -1, 1, 0}, codes)
	assert.Equal(t, []int64{7, 8}, uniques)
}

func TestSearchSorted(t *testing.T) {
	data := []int64{1, 3, 3, 5}

	assert.Equal(t, 1, SearchSorted(data, int64(3), SideLeft, nil))
	assert.Equal(t, 3, SearchSorted(data, int64(3), SideRight, nil))
	assert.Equal(t, 0, SearchSorted(data, int64(0), SideLeft, nil))
	assert.Equal(t, 4, SearchSorted(data, int64(9), SideRight, nil))

	// sorter permutes an unsorted buffer into ascending order
	unsorted := []int64{5, 1, 3}
	sorter := []int{1, 2, 0}
	assert.Equal(t, 1, SearchSorted(unsorted, int64(2), SideLeft, sorter))
}

func TestArgExtreme1D(t *testing.T) {
	isNA := func(v int64) bool { return v == -1 }

	assert.Equal(t, 1, ArgExtreme1D([]int64{5, 2, 9}, isNA, false))
	assert.Equal(t, 2, ArgExtreme1D([]int64{5, 2, 9}, isNA, true))
	assert.Equal(t, 2, ArgExtreme1D([]int64{-1, -1, 4}, isNA, false))
	assert.Equal(t, -1, ArgExtreme1D([]int64{-1, -1}, isNA, true))
}
