package fineoffset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)

func putShort(b []byte, f Field, n uint16) {
	raw := EncodeUnsignedShort(n)
	copy(b[f.Offset:], raw[:])
}

func putSigned(b []byte, f Field, n int) {
	raw := EncodeSignedShort(n)
	copy(b[f.Offset:], raw[:])
}

func newBlock(currentPos, dataCount int) []byte {
	b := make([]byte, SettingsBlockSize)
	b[0], b[1] = 0x55, 0xAA
	b[SettingsReadPeriod.Offset] = 30
	putShort(b, SettingsCurrentPos, uint16(currentPos))
	putShort(b, SettingsDataCount, uint16(dataCount))
	putShort(b, SettingsRelPressure, 10133)
	putShort(b, SettingsAbsPressure, 10193)
	dt := EncodeBCDDateTime(testClock)
	copy(b[SettingsDateTime.Offset:], dt[:])
	return b
}

func TestDecodeSettingsShortBlock(t *testing.T) {
	_, err := DecodeSettings(make([]byte, SettingsBlockSize-1))
	assert.ErrorIs(t, err, ErrMalformedBlock)
}

func TestDecodeSettings(t *testing.T) {
	b := newBlock(0x0100, 1)
	b[SettingsUnits.Offset] = byte(UnitOutTempFahrenheit | UnitPressureInHg)
	b[SettingsWindUnits.Offset] = byte(WindUnitKMH)
	b[SettingsDisplay1.Offset] = 0x04
	b[SettingsAlarmEnable2.Offset] = 0x02
	b[SettingsTimezone.Offset] = 0x81
	putSigned(b, AlarmInTempLo, -300)
	b[AlarmInHumidityHi.Offset] = 65
	copy(b[AlarmTime.Offset:], []byte{0x06, 0x30})
	putSigned(b, maxOutTemp.Value, 352)
	maxDate := [5]byte{0x23, 0x07, 0x21, 0x15, 0x45}
	copy(b[maxOutTemp.Date.Offset:], maxDate[:])

	s, err := DecodeSettings(b)
	require.NoError(t, err)

	assert.Equal(t, [2]byte{0x55, 0xAA}, s.Magic)
	assert.Equal(t, 30, s.ReadPeriod)
	assert.Equal(t, 0x0100, s.CurrentPos)
	assert.Equal(t, 1, s.DataCount)
	assert.Equal(t, -1, s.Timezone)
	assert.Equal(t, "F", s.Units.OutTempUnit())
	assert.Equal(t, "C", s.Units.InTempUnit())
	assert.Equal(t, "inHg", s.Units.PressureUnit())
	assert.Equal(t, "km/h", s.WindUnits.String())
	assert.True(t, s.Display.Has(DisplayOutDewPoint))
	assert.True(t, s.AlarmEnable.Has(AlarmInTempHigh))
	assert.False(t, s.AlarmEnable.Has(AlarmInTempLow))

	assert.InDelta(t, 1013.3, s.RelPressure.Number, 1e-9)
	assert.InDelta(t, 1019.3, s.AbsPressure.Number, 1e-9)
	off, ok := s.PressureOffset()
	require.True(t, ok)
	assert.InDelta(t, -6.0, off, 1e-9)

	clock, ok := s.Clock(time.UTC)
	require.True(t, ok)
	assert.Equal(t, testClock, clock)

	assert.InDelta(t, -30.0, s.Alarms.InTemp.Low.Number, 1e-9)
	assert.InDelta(t, 65.0, s.Alarms.InHumidity.High.Number, 1e-9)
	assert.Equal(t, "06:30", s.Alarms.Time.String())

	assert.InDelta(t, 35.2, s.Max.OutTemp.Value.Number, 1e-9)
	assert.Equal(t, maxDate, s.Max.OutTemp.DateRaw)
	assert.Equal(t, "2023-07-21 15:45", s.Max.OutTemp.Date.String())
}

func TestDecodeSettingsIdempotent(t *testing.T) {
	b := newBlock(0x0A30, 163)
	b[SettingsTimezone.Offset] = 0x02
	putSigned(b, maxOutTemp.Value, -87)

	first, err := DecodeSettings(b)
	require.NoError(t, err)
	second, err := DecodeSettings(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeSettingsSentinels(t *testing.T) {
	b := newBlock(0x0100, 1)
	copy(b[SettingsRelPressure.Offset:], []byte{0xFF, 0xFF})
	copy(b[minInTemp.Value.Offset:], []byte{0xFF, 0xFF})
	copy(b[minInTemp.Date.Offset:], []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	s, err := DecodeSettings(b)
	require.NoError(t, err)
	assert.False(t, s.RelPressure.Valid)
	assert.Equal(t, Placeholder, s.RelPressure.String())
	assert.False(t, s.Min.InTemp.Value.Valid)
	assert.Equal(t, [5]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, s.Min.InTemp.DateRaw)

	_, ok := s.PressureOffset()
	assert.False(t, ok)
}

func TestDecodeSettingsValidation(t *testing.T) {
	tests := []struct {
		name       string
		currentPos int
		dataCount  int
		wantErr    []string
	}{
		{"below history", 0x00F0, 1, []string{"current_pos 0x00F0 outside"}},
		{"misaligned", 0x0108, 1, []string{"not aligned"}},
		{"data count too large", 0x0100, HistoryMax + 1, []string{"data_count 4081 exceeds 4080"}},
		{"both reported together", 0x0108, 5000, []string{"not aligned", "data_count 5000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeSettings(newBlock(tt.currentPos, tt.dataCount))
			require.ErrorIs(t, err, ErrInvalidSettings)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
			assert.Equal(t, Settings{}, s)
		})
	}
}

func TestDecodeSettingsBoundaries(t *testing.T) {
	for _, pos := range []int{HistoryStart, LastRecordAddress} {
		_, err := DecodeSettings(newBlock(pos, HistoryMax))
		assert.NoError(t, err, "current_pos 0x%04X", pos)
	}
}

func TestDecodeSettingsIgnoresTrailingBytes(t *testing.T) {
	b := append(newBlock(0x0200, 17), make([]byte, 64)...)
	s, err := DecodeSettings(b)
	require.NoError(t, err)
	assert.Equal(t, 0x0200, s.CurrentPos)
}
