package fineoffset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesWithDelays(delays ...int) []HistoryEntry {
	out := make([]HistoryEntry, len(delays))
	for i, d := range delays {
		out[i].Index = len(delays) - i
		out[i].Record.Delay = d
	}
	return out
}

func TestReconstruct(t *testing.T) {
	in := entriesWithDelays(5, 10, 15)
	got := Reconstruct(testClock, in)

	require.Len(t, got, 3)
	assert.Equal(t, testClock, got[0].Timestamp)
	assert.Equal(t, testClock.Add(-300*time.Second), got[1].Timestamp)
	assert.Equal(t, testClock.Add(-900*time.Second), got[2].Timestamp)

	for _, e := range in {
		assert.True(t, e.Timestamp.IsZero(), "input must not be modified")
	}
}

func TestReconstructMonotonic(t *testing.T) {
	delays := make([]int, HistoryMax)
	for i := range delays {
		delays[i] = i % 241 // includes zero delays
	}
	got := Reconstruct(testClock, entriesWithDelays(delays...))

	for i := 1; i < len(got); i++ {
		require.False(t, got[i].Timestamp.After(got[i-1].Timestamp), "entry %d", i)
	}
	// full ring of maximum delays stays well inside int64 seconds
	full := Reconstruct(testClock, entriesWithDelays(make240(HistoryMax)...))
	want := testClock.Add(-time.Duration(240*60*(HistoryMax-1)) * time.Second)
	assert.Equal(t, want, full[len(full)-1].Timestamp)
}

func make240(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 240
	}
	return out
}

func TestReconstructKeepsLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	clock := time.Date(2024, time.January, 1, 0, 10, 0, 0, loc)
	got := Reconstruct(clock, entriesWithDelays(30, 30))
	assert.Equal(t, loc, got[1].Timestamp.Location())
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 40, 0, 0, loc), got[1].Timestamp)
}

func TestDecodeHistory(t *testing.T) {
	positions, err := AddressesFor(0x0120, 3, 3)
	require.NoError(t, err)

	chunks := make([][]byte, len(positions))
	for i := range chunks {
		c := make([]byte, TransferSize)
		copy(c, sampleChunk)
		c[0] = byte(10 * (i + 1))
		chunks[i] = c
	}

	entries, err := DecodeHistory(testClock, positions, chunks)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].Index)
	assert.Equal(t, 0x0100, entries[2].Address)
	assert.Equal(t, testClock.Add(-30*time.Minute), entries[2].Timestamp)
	assert.InDelta(t, 25.2, entries[1].Record.OutTemp.Number, 1e-9)
}

func TestDecodeHistoryErrors(t *testing.T) {
	positions := []Position{{1, 0x0100}}

	_, err := DecodeHistory(testClock, positions, nil)
	assert.Error(t, err)

	_, err = DecodeHistory(testClock, positions, [][]byte{{0x01, 0x02}})
	assert.ErrorIs(t, err, ErrMalformedChunk)

	_, err = DecodeHistoryFor(Settings{}, time.UTC, positions, [][]byte{sampleChunk})
	assert.ErrorIs(t, err, ErrNoStationTime)
}
