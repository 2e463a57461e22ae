package fineoffset

import (
	"fmt"
	"time"
)

// HistoryEntry is a decoded record at its place in the ring.
type HistoryEntry struct {
	Index     int
	Address   int
	Timestamp time.Time
	Record    WeatherRecord
}

// Reconstruct assigns timestamps to entries ordered newest first. The newest
// entry is stamped with stationTime and every later entry lies the summed
// delays of the entries before it further in the past. The input slice is not
// modified.
func Reconstruct(stationTime time.Time, entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)

	base := stationTime.Unix()
	loc := stationTime.Location()
	var elapsed int64
	for i := range out {
		out[i].Timestamp = time.Unix(base-elapsed, 0).In(loc)
		elapsed += int64(out[i].Record.Delay) * 60
	}
	return out
}

// DecodeHistory decodes chunks read at positions (same order, newest first)
// and stamps them relative to stationTime.
func DecodeHistory(stationTime time.Time, positions []Position, chunks [][]byte) ([]HistoryEntry, error) {
	if len(chunks) != len(positions) {
		return nil, fmt.Errorf("%d chunks for %d positions", len(chunks), len(positions))
	}
	entries := make([]HistoryEntry, len(positions))
	for i, pos := range positions {
		rec, err := DecodeRecord(chunks[i])
		if err != nil {
			return nil, fmt.Errorf("record %d at 0x%04X: %w", pos.Index, pos.Address, err)
		}
		entries[i] = HistoryEntry{Index: pos.Index, Address: pos.Address, Record: rec}
	}
	return Reconstruct(stationTime, entries), nil
}

// DecodeHistoryFor is DecodeHistory with the station clock taken from settings.
func DecodeHistoryFor(s Settings, loc *time.Location, positions []Position, chunks [][]byte) ([]HistoryEntry, error) {
	clock, ok := s.Clock(loc)
	if !ok {
		return nil, ErrNoStationTime
	}
	return DecodeHistory(clock, positions, chunks)
}
