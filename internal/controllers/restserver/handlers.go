package restserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lzrdig/FineOffsetNET/internal/report"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations/fineoffset"
	"github.com/lzrdig/FineOffsetNET/pkg/responseformat"
)

var noCache = map[string]string{"Cache-Control": "no-cache"}

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteStatusResponse(w, req, status, data, noCache); err != nil {
		h.controller.logger.Errorf("error encoding %v response: %v", req.URL.Path, err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, status int, message string) {
	if err := h.formatter.WriteError(w, req, status, message); err != nil {
		h.controller.logger.Errorf("error encoding %v error response: %v", req.URL.Path, err)
	}
}

// snapshot returns the latest scan, answering 503 itself when there is none.
func (h *Handlers) snapshot(w http.ResponseWriter, req *http.Request) (fineoffset.Snapshot, bool) {
	snap, err := h.controller.station.Snapshot()
	if err != nil {
		if errors.Is(err, fineoffset.ErrNoSnapshot) {
			h.fail(w, req, http.StatusServiceUnavailable, "station has not been read yet")
		} else {
			h.fail(w, req, http.StatusInternalServerError, err.Error())
		}
		return fineoffset.Snapshot{}, false
	}
	return snap, true
}

// GetSettings handles /settings
func (h *Handlers) GetSettings(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	station := h.controller.station
	h.write(w, req, http.StatusOK, SettingsResponse{
		ScanInfo: scanInfo(station.StationName(), snap),
		Settings: report.NewSettingsView(snap.Settings, station.Location()),
	})
}

// GetHistory handles /history. The optional count parameter limits the
// response to the newest count records.
func (h *Handlers) GetHistory(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}

	count := len(snap.History)
	if raw := req.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(w, req, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}
	h.write(w, req, http.StatusOK, h.transformHistory(h.controller.station.StationName(), snap, count))
}

// GetLatest handles /latest
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	newest, ok := snap.Latest()
	if !ok {
		h.fail(w, req, http.StatusNotFound, "no history records stored")
		return
	}
	h.write(w, req, http.StatusOK, LatestResponse{
		ScanInfo: scanInfo(h.controller.station.StationName(), snap),
		Record:   report.NewEntryView(newest, pressureOffset(snap)),
	})
}

// GetRain handles /rain
func (h *Handlers) GetRain(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	h.write(w, req, http.StatusOK, RainResponse{
		ScanInfo: scanInfo(h.controller.station.StationName(), snap),
		Rain:     report.NewRainView(snap.History),
	})
}

// GetSummary handles /summary
func (h *Handlers) GetSummary(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	h.write(w, req, http.StatusOK, h.transformSummary(h.controller.station.StationName(), snap))
}

// GetHealth handles /health. It answers 503 until the first scan succeeds.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{Status: "waiting", Station: h.controller.station.StationName()}
	snap, err := h.controller.station.Snapshot()
	if err != nil {
		h.write(w, req, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status = "ok"
	resp.ScannedAt = &snap.ScannedAt
	resp.Records = len(snap.History)
	h.write(w, req, http.StatusOK, resp)
}
