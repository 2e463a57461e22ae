package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lzrdig/FineOffsetNET/internal/report"
	"github.com/lzrdig/FineOffsetNET/internal/stats"
	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
	"github.com/lzrdig/FineOffsetNET/pkg/responseformat"
)

// Query modes.
const (
	ModeStatus   = "status"
	ModeSettings = "settings"
	ModeHistory  = "history"
	ModeSummary  = "summary"
	ModeNone     = ""
)

// Output formats besides those of responseformat.
const (
	FormatText = "text"
	FormatCSV  = "csv"
)

// QueryOptions selects what a one-shot query writes and changes.
type QueryOptions struct {
	Mode   string
	Format string
	// Count limits history and summary to the newest records; zero uses the
	// configured history count.
	Count int

	// Settings written before anything is read. Nil leaves the setting alone.
	Timezone   *int
	ReadPeriod *int
}

// SummaryReport is the structured form of the summary mode.
type SummaryReport struct {
	Latest     *report.EntryView `json:"latest" msgpack:"latest"`
	Rain       report.RainView   `json:"rain" msgpack:"rain"`
	Statistics []stats.Summary   `json:"statistics" msgpack:"statistics"`
}

// Validate rejects unknown modes and format combinations.
func (o QueryOptions) Validate() error {
	switch o.Mode {
	case ModeStatus, ModeSettings, ModeHistory, ModeSummary, ModeNone:
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	switch o.Format {
	case FormatText, responseformat.FormatJSON, responseformat.FormatMsgPack:
	case FormatCSV:
		if o.Mode != ModeHistory {
			return fmt.Errorf("csv output is only available for %s", ModeHistory)
		}
	default:
		return fmt.Errorf("unknown format %q", o.Format)
	}
	if o.Count < 0 || o.Count > fo.HistoryMax {
		return fmt.Errorf("count %d outside [0, %d]", o.Count, fo.HistoryMax)
	}
	return nil
}

// Query applies the requested setting changes, reads the station once and
// writes the report for opts.Mode to w.
func (a *App) Query(ctx context.Context, opts QueryOptions, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	station, cfg, err := a.openStation(ctx, &sync.WaitGroup{}, nil)
	if err != nil {
		return err
	}
	defer station.Close()

	if opts.Timezone != nil {
		if err := station.SetTimezone(ctx, *opts.Timezone); err != nil {
			return err
		}
	}
	if opts.ReadPeriod != nil {
		if err := station.SetReadPeriod(ctx, *opts.ReadPeriod); err != nil {
			return err
		}
	}
	if opts.Mode == ModeNone {
		return nil
	}

	settings, err := station.ReadSettings(ctx)
	if err != nil {
		return err
	}
	loc := station.Location()

	if opts.Mode == ModeStatus || opts.Mode == ModeSettings {
		if opts.Format != FormatText {
			return responseformat.Encode(w, opts.Format, report.NewSettingsView(settings, loc))
		}
		if opts.Mode == ModeStatus {
			return report.WriteStatus(w, settings, loc)
		}
		return report.WriteSettings(w, settings, loc)
	}

	count := opts.Count
	if count == 0 {
		count = cfg.Station.HistoryCount
	}
	history, err := station.ReadHistory(ctx, settings, count)
	if err != nil {
		return err
	}
	return writeHistoryReport(w, opts, settings, history)
}

func writeHistoryReport(w io.Writer, opts QueryOptions, settings fo.Settings, history []fo.HistoryEntry) error {
	offset, _ := settings.PressureOffset()

	if opts.Mode == ModeHistory {
		switch opts.Format {
		case FormatCSV:
			return report.WriteHistoryCSV(w, time.Now(), history, offset, true)
		case FormatText:
			return report.WriteHistoryCSV(w, time.Now(), history, offset, false)
		default:
			return responseformat.Encode(w, opts.Format, report.NewEntryViews(history, offset))
		}
	}

	if opts.Format == FormatText {
		return report.WriteSummary(w, settings, history)
	}
	sum := SummaryReport{
		Rain:       report.NewRainView(history),
		Statistics: stats.FromHistory(history, offset),
	}
	if len(history) > 0 {
		v := report.NewEntryView(history[0], offset)
		sum.Latest = &v
	}
	return responseformat.Encode(w, opts.Format, sum)
}
