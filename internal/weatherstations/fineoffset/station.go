// Package fineoffset drives a Fine Offset (WH1080 family) console over its
// USB memory protocol: it reads the settings block and history ring, keeps the
// latest decoded snapshot and publishes new records as readings.
package fineoffset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/internal/types"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

const (
	minReadPeriod = 1
	maxReadPeriod = 240
	maxTimezone   = 12
)

// ErrOutOfRange is returned for console settings outside what the console accepts.
var ErrOutOfRange = errors.New("value out of range")

// ErrNoSnapshot is returned before the first successful scan.
var ErrNoSnapshot = errors.New("no scan completed yet")

var (
	scansTotal        = metrics.NewCounter(`fineoffset_station_scans_total`)
	scanErrorsTotal   = metrics.NewCounter(`fineoffset_station_scan_errors_total`)
	invalidFields     = metrics.NewCounter(`fineoffset_station_invalid_fields_total`)
	publishedTotal    = metrics.NewCounter(`fineoffset_station_readings_published_total`)
	settingWriteTotal = metrics.NewCounter(`fineoffset_station_setting_writes_total`)
)

// Snapshot is the result of one scan of the console memory.
type Snapshot struct {
	ScanID    string
	ScannedAt time.Time
	Settings  fo.Settings
	History   []fo.HistoryEntry // newest first
}

// Latest returns the newest history entry.
func (s Snapshot) Latest() (fo.HistoryEntry, bool) {
	if len(s.History) == 0 {
		return fo.HistoryEntry{}, false
	}
	return s.History[0], true
}

// Station holds a Fine Offset console connection and the last scan result
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.StationData
	loc                *time.Location
	transport          transport.Transport
	ReadingDistributor chan types.Reading
	logger             *zap.SugaredLogger

	// ops serializes console access between the poller and setting writes
	ops sync.Mutex

	mu            sync.RWMutex
	snapshot      Snapshot
	scanned       bool
	lastPublished time.Time
}

// NewStation returns a station reading through t. distributor may be nil when
// readings are not consumed.
func NewStation(ctx context.Context, wg *sync.WaitGroup, cfg config.StationData, t transport.Transport, distributor chan types.Reading, logger *zap.SugaredLogger) (*Station, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("station [%s]: %w", cfg.Name, err)
	}
	if cfg.HistoryCount < 1 {
		cfg.HistoryCount = config.DefaultHistoryCount
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}

	return &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             cfg,
		loc:                loc,
		transport:          t,
		ReadingDistributor: distributor,
		logger:             logger,
	}, nil
}

func (s *Station) StationName() string {
	return s.config.Name
}

// Location is the zone the console clock is read in.
func (s *Station) Location() *time.Location {
	return s.loc
}

// StartWeatherStation launches the polling goroutine
func (s *Station) StartWeatherStation() error {
	s.logger.Infof("Starting Fine Offset weather station [%v]...", s.config.Name)

	s.wg.Add(1)
	go s.poll()

	return nil
}

func (s *Station) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(s.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Errorf("station [%s] scan failed: %v", s.config.Name, err)
		} else {
			s.publish()
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("cancellation request received. Cancelling station poller")
			return
		case <-ticker.C:
		}
	}
}

// readTransfer reads the block at addr, rejecting replies shorter than a
// full transfer.
func (s *Station) readTransfer(ctx context.Context, addr int) ([]byte, error) {
	buf, err := s.transport.Read(ctx, addr)
	if err != nil {
		return nil, err
	}
	if len(buf) < fo.TransferSize {
		return nil, fmt.Errorf("%w: short reply at 0x%04X: %d of %d bytes", transport.ErrTransport, addr, len(buf), fo.TransferSize)
	}
	return buf, nil
}

// readRange reads n bytes starting at addr in 32-byte transfers.
func (s *Station) readRange(ctx context.Context, addr, n int) ([]byte, error) {
	buf := make([]byte, 0, n+fo.TransferSize)
	for off := 0; off < n; off += fo.TransferSize {
		block, err := s.readTransfer(ctx, addr+off)
		if err != nil {
			return nil, err
		}
		buf = append(buf, block...)
	}
	return buf[:n], nil
}

// ReadSettings reads and decodes the fixed block.
func (s *Station) ReadSettings(ctx context.Context) (fo.Settings, error) {
	block, err := s.readRange(ctx, 0, fo.SettingsBlockSize)
	if err != nil {
		return fo.Settings{}, fmt.Errorf("reading settings block: %w", err)
	}
	return fo.DecodeSettings(block)
}

// ReadHistory reads up to count records, newest first, and stamps them from
// the station clock in settings.
func (s *Station) ReadHistory(ctx context.Context, settings fo.Settings, count int) ([]fo.HistoryEntry, error) {
	positions, err := fo.AddressesFor(settings.CurrentPos, settings.DataCount, count)
	if err != nil {
		return nil, err
	}

	chunks := make([][]byte, len(positions))
	for i, pos := range positions {
		buf, err := s.readTransfer(ctx, pos.Address)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", pos.Index, err)
		}
		chunks[i] = buf[:fo.ChunkSize]
	}
	return fo.DecodeHistoryFor(settings, s.loc, positions, chunks)
}

// Scan reads settings and the configured number of history records and
// stores the result as the current snapshot.
func (s *Station) Scan(ctx context.Context) (Snapshot, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	scansTotal.Inc()
	snap := Snapshot{ScanID: uuid.NewString(), ScannedAt: time.Now()}
	logger := s.logger.With("scan_id", snap.ScanID)

	settings, err := s.ReadSettings(ctx)
	if err != nil {
		scanErrorsTotal.Inc()
		return Snapshot{}, err
	}
	history, err := s.ReadHistory(ctx, settings, s.config.HistoryCount)
	if err != nil {
		scanErrorsTotal.Inc()
		return Snapshot{}, err
	}
	snap.Settings = settings
	snap.History = history

	invalid := 0
	for _, e := range history {
		invalid += countInvalid(e.Record)
	}
	invalidFields.Add(invalid)
	metrics.GetOrCreateGauge(fmt.Sprintf(`fineoffset_station_ring_records{station=%q}`, s.config.Name), nil).Set(float64(settings.DataCount))
	logger.Debugf("read %d of %d records, %d invalid fields, current_pos 0x%04X",
		len(history), settings.DataCount, invalid, settings.CurrentPos)

	s.mu.Lock()
	s.snapshot = snap
	s.scanned = true
	s.mu.Unlock()
	return snap, nil
}

// Snapshot returns the last scan result.
func (s *Station) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.scanned {
		return Snapshot{}, ErrNoSnapshot
	}
	return s.snapshot, nil
}

// publish sends readings for records newer than the last published one,
// oldest first.
func (s *Station) publish() {
	snap, err := s.Snapshot()
	if err != nil || s.ReadingDistributor == nil {
		return
	}
	offset, _ := snap.Settings.PressureOffset()

	s.mu.Lock()
	since := s.lastPublished
	s.mu.Unlock()

	for i := len(snap.History) - 1; i >= 0; i-- {
		e := snap.History[i]
		if !e.Timestamp.After(since) {
			continue
		}
		var prev *fo.HistoryEntry
		if i+1 < len(snap.History) {
			prev = &snap.History[i+1]
		}
		r := NewReading(s.config.Name, snap.ScanID, e, prev, offset)
		observe(s.config.Name, r)

		select {
		case s.ReadingDistributor <- r:
			publishedTotal.Inc()
		case <-s.ctx.Done():
			return
		}

		s.mu.Lock()
		s.lastPublished = e.Timestamp
		s.mu.Unlock()
	}
}

// SetTimezone stores the console timezone in hours relative to CET.
func (s *Station) SetTimezone(ctx context.Context, hours int) error {
	if hours < -maxTimezone || hours > maxTimezone {
		return fmt.Errorf("%w: timezone %d outside [-%d, %d]", ErrOutOfRange, hours, maxTimezone, maxTimezone)
	}
	return s.writeSetting(ctx, fo.TimezoneAddress, fo.EncodeSignedByte(hours))
}

// SetReadPeriod sets the minutes between stored history records.
func (s *Station) SetReadPeriod(ctx context.Context, minutes int) error {
	if minutes < minReadPeriod || minutes > maxReadPeriod {
		return fmt.Errorf("%w: read period %d outside [%d, %d]", ErrOutOfRange, minutes, minReadPeriod, maxReadPeriod)
	}
	return s.writeSetting(ctx, fo.ReadPeriodAddress, byte(minutes))
}

// writeSetting writes one byte and tells the console to reload its settings.
func (s *Station) writeSetting(ctx context.Context, addr int, value byte) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	if err := s.transport.Write(ctx, addr, []byte{value}); err != nil {
		return fmt.Errorf("writing 0x%02X at 0x%04X: %w", value, addr, err)
	}
	if err := s.transport.Write(ctx, fo.DataRefreshedAddress, []byte{fo.DataRefreshedMarker}); err != nil {
		return fmt.Errorf("notifying settings change: %w", err)
	}
	settingWriteTotal.Inc()
	s.logger.Infof("station [%s] setting at 0x%04X changed to 0x%02X", s.config.Name, addr, value)
	return nil
}

// Close releases the transport.
func (s *Station) Close() error {
	return s.transport.Close()
}

func countInvalid(r fo.WeatherRecord) int {
	n := 0
	for _, v := range []fo.Value{r.InHumidity, r.InTemp, r.OutHumidity, r.OutTemp, r.DewPoint,
		r.AbsPressure, r.WindAvg, r.WindGust, r.WindDir, r.Rain} {
		if !v.Valid {
			n++
		}
	}
	return n
}
