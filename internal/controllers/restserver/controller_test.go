package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/emulator"
	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations/fineoffset"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

var start = time.Date(2024, time.March, 3, 6, 0, 0, 0, time.UTC)

func newStation(t *testing.T, records int) *fineoffset.Station {
	t.Helper()
	img := emulator.NewImage()
	emulator.NewGenerator(img, start, 30, 3).Fill(records)

	cfg := config.Default().Station
	cfg.Name = "roof"
	cfg.Timezone = "UTC"
	cfg.HistoryCount = 8

	dev := transport.NewDevice(transport.NewLoopback(img), time.Second, nil)
	s, err := fineoffset.NewStation(context.Background(), &sync.WaitGroup{}, cfg, dev, nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s
}

func newServer(t *testing.T, s StationSource) http.Handler {
	t.Helper()
	c, err := NewController(config.RESTServerData{}, s, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Addr)
	return c.Server.Handler
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewControllerNeedsStation(t *testing.T) {
	_, err := NewController(config.RESTServerData{}, nil, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestBeforeFirstScan(t *testing.T) {
	h := newServer(t, newStation(t, 4))

	rec := get(t, h, "/latest")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"station has not been read yet"}`, rec.Body.String())

	rec = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"waiting","station":"roof","records":0}`, rec.Body.String())
}

func TestEndpoints(t *testing.T) {
	s := newStation(t, 12)
	snap, err := s.Scan(context.Background())
	require.NoError(t, err)
	h := newServer(t, s)

	t.Run("settings", func(t *testing.T) {
		rec := get(t, h, "/settings")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

		var resp SettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "roof", resp.Station)
		assert.Equal(t, snap.ScanID, resp.ScanID)
		assert.Equal(t, 12, resp.Settings.DataCount)
		assert.Equal(t, 30, resp.Settings.ReadPeriod)
	})

	t.Run("history", func(t *testing.T) {
		var resp HistoryResponse
		rec := get(t, h, "/history")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 8, resp.Count)
		assert.Equal(t, 12, resp.Records[0].Index)

		rec = get(t, h, "/history?count=3")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Records, 3)
		assert.Equal(t, 10, resp.Records[2].Index)

		rec = get(t, h, "/history?count=0")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("latest", func(t *testing.T) {
		var resp LatestResponse
		rec := get(t, h, "/latest")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 12, resp.Record.Index)
		assert.Equal(t, snap.History[0].Timestamp, resp.Record.Timestamp)
	})

	t.Run("latest msgpack", func(t *testing.T) {
		rec := get(t, h, "/latest?format=msgpack")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))

		var resp LatestResponse
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "roof", resp.Station)
		assert.Equal(t, 12, resp.Record.Index)
	})

	t.Run("rain", func(t *testing.T) {
		var resp RainResponse
		rec := get(t, h, "/rain")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "3h30m0s", resp.Rain.Covered)
	})

	t.Run("summary", func(t *testing.T) {
		var resp SummaryResponse
		rec := get(t, h, "/summary")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 8, resp.Records)
		assert.NotEmpty(t, resp.Statistics)
		assert.Equal(t, "in_temp", resp.Statistics[0].Name)
	})

	t.Run("health", func(t *testing.T) {
		var resp HealthResponse
		rec := get(t, h, "/health")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 8, resp.Records)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(t, h, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "fineoffset_station_scans_total")
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/settings", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

type emptyStation struct{}

func (emptyStation) StationName() string      { return "empty" }
func (emptyStation) Location() *time.Location { return time.UTC }
func (emptyStation) Snapshot() (fineoffset.Snapshot, error) {
	return fineoffset.Snapshot{ScanID: "scan-1"}, nil
}

func TestEmptyHistory(t *testing.T) {
	h := newServer(t, emptyStation{})

	rec := get(t, h, "/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Records)
	assert.Empty(t, resp.Statistics)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	c, err := NewController(config.RESTServerData{ListenAddr: "127.0.0.1", Port: 18089}, emptyStation{}, zap.NewNop().Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
