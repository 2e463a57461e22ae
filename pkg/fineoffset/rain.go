package fineoffset

import "time"

// RainTotals is rainfall in mm over trailing windows ending at the newest record.
type RainTotals struct {
	Hour  float64
	Day   float64
	Week  float64
	Month float64
}

// Rain windows measured back from the newest record.
const (
	RainHourWindow  = time.Hour
	RainDayWindow   = 24 * time.Hour
	RainWeekWindow  = 7 * 24 * time.Hour
	RainMonthWindow = 30 * 24 * time.Hour
)

const rainTickMM = 0.3

// RainOver sums rainfall between the newest entry and the oldest entry no
// more than window before it. Entries must be newest first with timestamps.
// The 16-bit tick counter may wrap between records; records with an invalid
// counter are skipped.
func RainOver(entries []HistoryEntry, window time.Duration) float64 {
	if len(entries) == 0 {
		return 0
	}
	cutoff := entries[0].Timestamp.Add(-window)

	var ticks int
	prev := -1
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			break
		}
		if !e.Record.Rain.Valid {
			continue
		}
		cur := e.Record.RainTicks
		if prev >= 0 {
			ticks += (prev - cur + 0x10000) & 0xFFFF
		}
		prev = cur
	}
	return float64(ticks) * rainTickMM
}

// Rain computes all trailing windows at once.
func Rain(entries []HistoryEntry) RainTotals {
	return RainTotals{
		Hour:  RainOver(entries, RainHourWindow),
		Day:   RainOver(entries, RainDayWindow),
		Week:  RainOver(entries, RainWeekWindow),
		Month: RainOver(entries, RainMonthWindow),
	}
}
