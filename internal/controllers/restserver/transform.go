package restserver

import (
	"github.com/lzrdig/FineOffsetNET/internal/report"
	"github.com/lzrdig/FineOffsetNET/internal/stats"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations/fineoffset"
)

func scanInfo(station string, snap fineoffset.Snapshot) ScanInfo {
	return ScanInfo{Station: station, ScanID: snap.ScanID, ScannedAt: snap.ScannedAt}
}

// pressureOffset falls back to zero when the console has no pressure pair,
// which leaves relative pressure equal to absolute.
func pressureOffset(snap fineoffset.Snapshot) float64 {
	offset, _ := snap.Settings.PressureOffset()
	return offset
}

func (h *Handlers) transformHistory(station string, snap fineoffset.Snapshot, count int) HistoryResponse {
	entries := snap.History[:min(count, len(snap.History))]
	return HistoryResponse{
		ScanInfo: scanInfo(station, snap),
		Count:    len(entries),
		Records:  report.NewEntryViews(entries, pressureOffset(snap)),
	}
}

func (h *Handlers) transformSummary(station string, snap fineoffset.Snapshot) SummaryResponse {
	sums := stats.FromHistory(snap.History, pressureOffset(snap))
	if sums == nil {
		sums = []stats.Summary{}
	}
	return SummaryResponse{
		ScanInfo:   scanInfo(station, snap),
		Records:    len(snap.History),
		Statistics: sums,
	}
}
