package fineoffset

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/constants"
	"github.com/lzrdig/FineOffsetNET/internal/emulator"
	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/internal/types"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

var start = time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC)

var _ weatherstations.WeatherStation = (*Station)(nil)

type fixture struct {
	img     *emulator.Image
	gen     *emulator.Generator
	station *Station
	out     chan types.Reading
	wg      *sync.WaitGroup
}

func newFixture(t *testing.T, ctx context.Context, records int) *fixture {
	t.Helper()
	img := emulator.NewImage()
	gen := emulator.NewGenerator(img, start, 5, 7)
	gen.Fill(records)

	cfg := config.Default().Station
	cfg.Name = "garden"
	cfg.Timezone = "UTC"
	cfg.HistoryCount = 5
	cfg.PollInterval = time.Hour

	f := &fixture{img: img, gen: gen, out: make(chan types.Reading, 32), wg: &sync.WaitGroup{}}
	dev := transport.NewDevice(transport.NewLoopback(img), time.Second, nil)
	s, err := NewStation(ctx, f.wg, cfg, dev, f.out, zap.NewNop().Sugar())
	require.NoError(t, err)
	f.station = s
	return f
}

func TestNewStationRejectsBadTimezone(t *testing.T) {
	cfg := config.Default().Station
	cfg.Timezone = "Nowhere/Special"
	_, err := NewStation(context.Background(), &sync.WaitGroup{}, cfg, nil, nil, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	f := newFixture(t, context.Background(), 10)

	_, err := f.station.Snapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap, err := f.station.Scan(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ScanID)
	assert.Equal(t, 10, snap.Settings.DataCount)
	require.Len(t, snap.History, 5)

	newest, ok := snap.Latest()
	require.True(t, ok)
	assert.Equal(t, 10, newest.Index)
	assert.Equal(t, fo.HistoryStart+9*fo.ChunkSize, newest.Address)
	assert.Equal(t, f.gen.Clock(), newest.Timestamp)
	assert.Equal(t, newest.Timestamp.Add(-5*time.Minute), snap.History[1].Timestamp)
	assert.Equal(t, 6, snap.History[4].Index)

	again, err := f.station.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap.ScanID, again.ScanID)
}

func TestReadHistoryClampsToDataCount(t *testing.T) {
	f := newFixture(t, context.Background(), 3)
	settings, err := f.station.ReadSettings(context.Background())
	require.NoError(t, err)

	history, err := f.station.ReadHistory(context.Background(), settings, 50)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, 1, history[2].Index)
}

type silent struct{}

func (silent) Respond([]byte) []byte { return nil }

func TestScanTransportFailure(t *testing.T) {
	cfg := config.Default().Station
	dev := transport.NewDevice(transport.NewLoopback(silent{}), time.Second, nil)
	s, err := NewStation(context.Background(), &sync.WaitGroup{}, cfg, dev, nil, zap.NewNop().Sugar())
	require.NoError(t, err)

	_, err = s.Scan(context.Background())
	assert.ErrorIs(t, err, transport.ErrTransport)
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

// truncating answers settings reads in full and cuts history replies short.
type truncating struct {
	transport.Transport
}

func (tr truncating) Read(ctx context.Context, addr int) ([]byte, error) {
	buf, err := tr.Transport.Read(ctx, addr)
	if err != nil || addr < fo.HistoryStart {
		return buf, err
	}
	return buf[:fo.ChunkSize-1], nil
}

func TestShortTransportReply(t *testing.T) {
	img := emulator.NewImage()
	emulator.NewGenerator(img, start, 5, 7).Fill(4)
	cfg := config.Default().Station
	cfg.Timezone = "UTC"

	dev := truncating{transport.NewDevice(transport.NewLoopback(img), time.Second, nil)}
	s, err := NewStation(context.Background(), &sync.WaitGroup{}, cfg, dev, nil, zap.NewNop().Sugar())
	require.NoError(t, err)

	settings, err := s.ReadSettings(context.Background())
	require.NoError(t, err)
	_, err = s.ReadHistory(context.Background(), settings, 2)
	assert.ErrorIs(t, err, transport.ErrTransport)
	assert.Contains(t, err.Error(), "short reply")
}

func TestPublishOnlyNewRecords(t *testing.T) {
	f := newFixture(t, context.Background(), 10)

	_, err := f.station.Scan(context.Background())
	require.NoError(t, err)
	f.station.publish()
	require.Len(t, f.out, 5)

	first := <-f.out
	assert.Equal(t, "garden", first.StationName)
	assert.Equal(t, 6, first.Index)
	assert.Equal(t, 5, first.Interval)
	for range 4 {
		<-f.out
	}

	f.station.publish()
	assert.Empty(t, f.out, "nothing new since the last scan")

	f.gen.Fill(2)
	_, err = f.station.Scan(context.Background())
	require.NoError(t, err)
	f.station.publish()
	require.Len(t, f.out, 2)
	r := <-f.out
	assert.Equal(t, 11, r.Index)
	r = <-f.out
	assert.Equal(t, 12, r.Index)
	assert.Equal(t, f.gen.Clock(), r.Timestamp)
}

func TestSetReadPeriod(t *testing.T) {
	f := newFixture(t, context.Background(), 1)
	ctx := context.Background()

	require.NoError(t, f.station.SetReadPeriod(ctx, 15))
	assert.Equal(t, []byte{15}, f.img.Bytes(fo.ReadPeriodAddress, 1))
	assert.Equal(t, []byte{fo.DataRefreshedMarker}, f.img.Bytes(fo.DataRefreshedAddress, 1))
	assert.Equal(t, []int{fo.ReadPeriodAddress, fo.DataRefreshedAddress}, f.img.Writes())

	assert.ErrorIs(t, f.station.SetReadPeriod(ctx, 0), ErrOutOfRange)
	assert.ErrorIs(t, f.station.SetReadPeriod(ctx, 241), ErrOutOfRange)
	assert.Len(t, f.img.Writes(), 2)
}

func TestSetTimezone(t *testing.T) {
	f := newFixture(t, context.Background(), 1)
	ctx := context.Background()

	require.NoError(t, f.station.SetTimezone(ctx, -3))
	assert.Equal(t, []byte{0x83}, f.img.Bytes(fo.TimezoneAddress, 1))

	settings, err := f.station.ReadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, -3, settings.Timezone)

	assert.ErrorIs(t, f.station.SetTimezone(ctx, 13), ErrOutOfRange)
}

func TestStartWeatherStation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, ctx, 4)

	require.NoError(t, f.station.StartWeatherStation())
	assert.Equal(t, "garden", f.station.StationName())

	select {
	case r := <-f.out:
		assert.Equal(t, 1, r.Index)
	case <-time.After(5 * time.Second):
		t.Fatal("no reading published")
	}

	cancel()
	f.wg.Wait()
}

func TestNewReading(t *testing.T) {
	img := emulator.NewImage()
	gen := emulator.NewGenerator(img, start, 5, 9)
	gen.SensorDropEvery = 2
	gen.Fill(2)

	dev := transport.NewDevice(transport.NewLoopback(img), time.Second, nil)
	cfg := config.Default().Station
	cfg.Timezone = "UTC"
	s, err := NewStation(context.Background(), &sync.WaitGroup{}, cfg, dev, nil, zap.NewNop().Sugar())
	require.NoError(t, err)

	snap, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.History, 2)
	offset, ok := snap.Settings.PressureOffset()
	require.True(t, ok)

	lost := NewReading("garden", snap.ScanID, snap.History[0], &snap.History[1], offset)
	assert.True(t, lost.ContactLost)
	for _, name := range []string{"OutTemp", "OutHumidity", "WindSpeed", "WindDir", "HeatIndex", "WindChill"} {
		assert.False(t, lost.IsValid(name), name)
	}
	assert.True(t, lost.IsValid("InTemp"))
	assert.True(t, lost.IsValid("RainIncremental"))
	assert.NotContains(t, lost.ToMap(), "OutTemp")

	ok1 := NewReading("garden", snap.ScanID, snap.History[1], nil, offset)
	assert.False(t, ok1.ContactLost)
	assert.True(t, ok1.IsValid("OutTemp"))
	assert.False(t, ok1.IsValid("RainIncremental"))
	assert.InDelta(t, float64(ok1.AbsPressure)+offset, float64(ok1.Barometer), 0.01)
	assert.Equal(t, constants.StationType, ok1.StationType)
}
