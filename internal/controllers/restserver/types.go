package restserver

import (
	"time"

	"github.com/lzrdig/FineOffsetNET/internal/report"
	"github.com/lzrdig/FineOffsetNET/internal/stats"
)

// ScanInfo identifies the scan a response was built from.
type ScanInfo struct {
	Station   string    `json:"station" msgpack:"station"`
	ScanID    string    `json:"scan_id" msgpack:"scan_id"`
	ScannedAt time.Time `json:"scanned_at" msgpack:"scanned_at"`
}

// SettingsResponse is returned by /settings.
type SettingsResponse struct {
	ScanInfo
	Settings report.SettingsView `json:"settings" msgpack:"settings"`
}

// HistoryResponse is returned by /history. Records are newest first.
type HistoryResponse struct {
	ScanInfo
	Count   int                `json:"count" msgpack:"count"`
	Records []report.EntryView `json:"records" msgpack:"records"`
}

// LatestResponse is returned by /latest.
type LatestResponse struct {
	ScanInfo
	Record report.EntryView `json:"record" msgpack:"record"`
}

// RainResponse is returned by /rain.
type RainResponse struct {
	ScanInfo
	Rain report.RainView `json:"rain" msgpack:"rain"`
}

// SummaryResponse is returned by /summary.
type SummaryResponse struct {
	ScanInfo
	Records    int             `json:"records" msgpack:"records"`
	Statistics []stats.Summary `json:"statistics" msgpack:"statistics"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string     `json:"status" msgpack:"status"`
	Station   string     `json:"station" msgpack:"station"`
	ScannedAt *time.Time `json:"scanned_at,omitempty" msgpack:"scanned_at,omitempty"`
	Records   int        `json:"records" msgpack:"records"`
}
