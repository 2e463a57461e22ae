package fineoffset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured from a WH1080 console
var sampleChunk = []byte{0x1E, 0x35, 0x05, 0x01, 0x37, 0xFC, 0x00, 0xD1, 0x27, 0x1F, 0x3A, 0x00, 0x0A, 0x22, 0x00, 0x00}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(sampleChunk)
	require.NoError(t, err)

	assert.Equal(t, 30, rec.Delay)
	assert.InDelta(t, 53, rec.InHumidity.Number, 1e-9)
	assert.InDelta(t, 26.1, rec.InTemp.Number, 1e-9)
	assert.InDelta(t, 55, rec.OutHumidity.Number, 1e-9)
	assert.InDelta(t, 25.2, rec.OutTemp.Number, 1e-9)
	assert.InDelta(t, 15.5, rec.DewPoint.Number, 0.05)
	assert.InDelta(t, 1019.3, rec.AbsPressure.Number, 1e-9)
	assert.InDelta(t, 3.1, rec.WindAvg.Number, 1e-9)
	assert.InDelta(t, 5.8, rec.WindGust.Number, 1e-9)
	assert.InDelta(t, 225, rec.WindDir.Number, 1e-9)
	assert.InDelta(t, 10.2, rec.Rain.Number, 1e-9)
	assert.Equal(t, 34, rec.RainTicks)
	assert.False(t, rec.Status.ContactLost())
	assert.Equal(t, [16]byte(sampleChunk), rec.Raw)

	dir, ok := rec.WindDirIndex()
	require.True(t, ok)
	assert.Equal(t, "SW", CompassPoint(dir))
	assert.Equal(t, 2, Beaufort(rec.WindAvg.Number))
	assert.Equal(t, 4, Beaufort(rec.WindGust.Number))

	rel := rec.RelPressure(-6.0)
	assert.InDelta(t, 1013.3, rel.Number, 1e-9)
	assert.Equal(t, "1013.3", rel.String())
}

func TestDecodeRecordShortChunk(t *testing.T) {
	_, err := DecodeRecord(sampleChunk[:15])
	assert.ErrorIs(t, err, ErrMalformedChunk)
}

func TestDecodeRecordSentinels(t *testing.T) {
	chunk := make([]byte, ChunkSize)
	copy(chunk, sampleChunk)
	chunk[1] = 0xFF                 // indoor humidity
	chunk[5], chunk[6] = 0xFF, 0xFF // outdoor temperature
	chunk[12] = 0x80                // wind direction invalid flag
	chunk[15] = byte(StatusContactLost | StatusRainOverflow)

	rec, err := DecodeRecord(chunk)
	require.NoError(t, err)

	assert.False(t, rec.InHumidity.Valid)
	assert.Equal(t, Placeholder, rec.InHumidity.String())
	assert.False(t, rec.OutTemp.Valid)
	assert.False(t, rec.DewPoint.Valid, "dew point needs outdoor temperature")
	assert.False(t, rec.WindChill().Valid)
	assert.True(t, rec.OutHumidity.Valid)
	assert.False(t, rec.WindDir.Valid)
	_, ok := rec.WindDirIndex()
	assert.False(t, ok)
	assert.True(t, rec.Status.ContactLost())
	assert.True(t, rec.Status.RainOverflow())
	assert.Equal(t, "contact_lost,rain_overflow", rec.Status.String())
}

func TestDecodeRecordWindDirRange(t *testing.T) {
	tests := []struct {
		dir   byte
		valid bool
	}{
		{0x00, true},
		{0x0F, true},
		{0x10, false},
		{0x7F, false},
		{0x8A, false},
	}
	for _, tt := range tests {
		chunk := make([]byte, ChunkSize)
		copy(chunk, sampleChunk)
		chunk[RecordWindDir.Offset] = tt.dir

		rec, err := DecodeRecord(chunk)
		require.NoError(t, err)
		assert.Equal(t, tt.valid, rec.WindDir.Valid, "dir 0x%02X", tt.dir)
		idx, ok := rec.WindDirIndex()
		assert.Equal(t, tt.valid, ok, "dir 0x%02X", tt.dir)
		if tt.valid {
			assert.Equal(t, int(tt.dir), idx)
		}
	}
}

func TestDecodeRecordAllEmpty(t *testing.T) {
	chunk := make([]byte, ChunkSize)
	for i := range chunk {
		chunk[i] = 0xFF
	}
	rec, err := DecodeRecord(chunk)
	require.NoError(t, err)

	for name, v := range map[string]Value{
		"hum_in":       rec.InHumidity,
		"temp_in":      rec.InTemp,
		"hum_out":      rec.OutHumidity,
		"temp_out":     rec.OutTemp,
		"abs_pressure": rec.AbsPressure,
		"wind_ave":     rec.WindAvg,
		"wind_gust":    rec.WindGust,
		"wind_dir":     rec.WindDir,
		"rain":         rec.Rain,
	} {
		assert.False(t, v.Valid, name)
	}
	assert.Equal(t, 0, rec.RainTicks)
	assert.False(t, rec.RelPressure(3).Valid)
}
