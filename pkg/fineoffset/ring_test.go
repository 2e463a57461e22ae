package fineoffset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressesFor(t *testing.T) {
	tests := []struct {
		name       string
		currentPos int
		dataCount  int
		count      int
		want       []Position
	}{
		{
			name:       "single record",
			currentPos: 0x0100, dataCount: 1, count: 10,
			want: []Position{{1, 0x0100}},
		},
		{
			name:       "filling ring",
			currentPos: 0x0120, dataCount: 3, count: 3,
			want: []Position{{3, 0x0120}, {2, 0x0110}, {1, 0x0100}},
		},
		{
			name:       "request smaller than stored",
			currentPos: 0x0400, dataCount: 49, count: 2,
			want: []Position{{49, 0x0400}, {48, 0x03F0}},
		},
		{
			name:       "full ring at last slot",
			currentPos: 0xFFF0, dataCount: HistoryMax, count: 3,
			want: []Position{{4080, 0xFFF0}, {4079, 0xFFE0}, {4078, 0xFFD0}},
		},
		{
			name:       "full ring wraps below start",
			currentPos: 0x0110, dataCount: HistoryMax, count: 3,
			want: []Position{{4080, 0x0110}, {4079, 0x0100}, {4078, 0xFFF0}},
		},
		{
			name:       "nothing stored",
			currentPos: 0x0100, dataCount: 0, count: 5,
			want: []Position{},
		},
		{
			name:       "nothing requested",
			currentPos: 0x0100, dataCount: 5, count: 0,
			want: []Position{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddressesFor(tt.currentPos, tt.dataCount, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddressesForFullWalk(t *testing.T) {
	for _, currentPos := range []int{HistoryStart, 0x0110, 0x8000, LastRecordAddress} {
		got, err := AddressesFor(currentPos, HistoryMax, HistoryMax*3)
		require.NoError(t, err)
		require.Len(t, got, HistoryMax)

		addrs := make(map[int]bool, len(got))
		indices := make(map[int]bool, len(got))
		for i, p := range got {
			require.GreaterOrEqual(t, p.Address, HistoryStart)
			require.Less(t, p.Address, HistoryEnd)
			require.Zero(t, (p.Address-HistoryStart)%ChunkSize)
			require.GreaterOrEqual(t, p.Index, 1)
			require.LessOrEqual(t, p.Index, HistoryMax)
			addrs[p.Address] = true
			indices[p.Index] = true
			// newest first: indices strictly descend
			if i > 0 {
				require.Equal(t, got[i-1].Index-1, p.Index, "current_pos 0x%04X step %d", currentPos, i)
			}
		}
		assert.Len(t, addrs, HistoryMax)
		assert.Len(t, indices, HistoryMax)
		assert.Equal(t, HistoryMax, got[0].Index)
		assert.Equal(t, 1, got[len(got)-1].Index)
	}
}

func TestAddressesForCorruptCount(t *testing.T) {
	got, err := AddressesFor(0x0200, 60000, 60000)
	require.NoError(t, err)
	assert.Len(t, got, HistoryMax)
}

func TestAddressesForInvalidPosition(t *testing.T) {
	for _, pos := range []int{0, 0x00F0, 0x0108, HistoryEnd, 0x1FFFF} {
		_, err := AddressesFor(pos, 10, 10)
		assert.ErrorIs(t, err, ErrAddressOutOfRange, "0x%04X", pos)
	}
}

func TestCursorBackward(t *testing.T) {
	c, err := HistoryRing.CursorAt(HistoryStart)
	require.NoError(t, err)

	prev := c.Backward()
	assert.Equal(t, LastRecordAddress, prev.Address())
	assert.Equal(t, HistoryEnd-(HistoryStart-(HistoryStart-ChunkSize)), prev.Address())
	assert.Equal(t, LastRecordAddress-ChunkSize, prev.Backward().Address())

	small := Ring{Base: 0x10, Capacity: 3, Stride: 4}
	c, err = small.CursorAt(0x14)
	require.NoError(t, err)
	var walk []int
	for range 4 {
		walk = append(walk, c.Address())
		c = c.Backward()
	}
	assert.Equal(t, []int{0x14, 0x10, 0x18, 0x14}, walk)
}
