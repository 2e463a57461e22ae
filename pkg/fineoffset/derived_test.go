package fineoffset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDewPointC(t *testing.T) {
	assert.InDelta(t, 15.5, DewPointC(25.2, 55), 0.05)
	assert.InDelta(t, 20.0, DewPointC(20.0, 100), 1e-9)
}

func TestWindChillC(t *testing.T) {
	assert.Equal(t, 25.2, WindChillC(25.2, 10))
	assert.Equal(t, -5.0, WindChillC(-5.0, 1.0), "calm air")
	assert.InDelta(t, -20.28, WindChillC(-10, 10), 0.05)
}

func TestHeatIndexC(t *testing.T) {
	assert.Equal(t, 20.0, HeatIndexC(20, 90))
	// 90 °F at 70 % is 105.9 °F on the NWS table
	assert.InDelta(t, 41.1, HeatIndexC(32.2222, 70), 0.2)
}

func TestBeaufort(t *testing.T) {
	tests := []struct {
		ms   float64
		want int
	}{
		{0, 0}, {0.3, 1}, {3.1, 2}, {5.8, 4}, {10.8, 6}, {32.6, 11}, {32.7, 12}, {60, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Beaufort(tt.ms), "%.1f m/s", tt.ms)
	}
}

func TestCompassPoint(t *testing.T) {
	assert.Equal(t, "N", CompassPoint(0))
	assert.Equal(t, "SW", CompassPoint(10))
	assert.Equal(t, "NNW", CompassPoint(15))
	assert.Equal(t, Placeholder, CompassPoint(16))
}

func rainEntries(step time.Duration, ticks ...int) []HistoryEntry {
	out := make([]HistoryEntry, len(ticks))
	for i, n := range ticks {
		out[i].Timestamp = testClock.Add(-time.Duration(i) * step)
		out[i].Record.RainTicks = n
		out[i].Record.Rain = Value{Type: UnsignedShort, Number: float64(n) * rainTickMM, Valid: true}
	}
	return out
}

func TestRainOver(t *testing.T) {
	entries := rainEntries(30*time.Minute, 110, 105, 100, 90, 90, 80)

	assert.InDelta(t, 3.0, RainOver(entries, time.Hour), 1e-9)
	assert.InDelta(t, 9.0, RainOver(entries, 24*time.Hour), 1e-9)
	assert.Zero(t, RainOver(nil, time.Hour))
}

func TestRainOverCounterWrap(t *testing.T) {
	entries := rainEntries(10*time.Minute, 2, 0xFFFE)
	assert.InDelta(t, 1.2, RainOver(entries, time.Hour), 1e-9)
}

func TestRainSkipsInvalidCounter(t *testing.T) {
	entries := rainEntries(10*time.Minute, 20, 0, 10)
	entries[1].Record.Rain = invalid(UnsignedShort)
	entries[1].Record.RainTicks = 0

	totals := Rain(entries)
	assert.InDelta(t, 3.0, totals.Hour, 1e-9)
	assert.Equal(t, totals.Hour, totals.Month)
}
