package fineoffset

import (
	"fmt"
	"sort"
)

// Memory geometry of the station.
const (
	ChunkSize         = 16    // one history record
	TransferSize      = 32    // bytes returned by one device read
	SettingsBlockSize = 0x100 // fixed block at address 0
	HistoryMax        = 4080  // records in the ring
	HistoryStart      = 0x100 // address of the first ring slot
	HistoryEnd        = HistoryStart + HistoryMax*ChunkSize
	MemorySize        = 0x10000
	LastRecordAddress = HistoryEnd - ChunkSize
)

// Addresses the host writes to.
const (
	ReadPeriodAddress    = 16
	TimezoneAddress      = 24
	DataRefreshedAddress = 26

	// DataRefreshedMarker tells the station that the settings block was changed.
	DataRefreshedMarker = 0xAA
)

// Field locates a typed value inside a settings block or a history record.
type Field struct {
	Name   string
	Offset int
	Type   FieldType
	Scale  float64
}

// Decode reads the field out of buf, which is the whole record or block.
func (f Field) Decode(buf []byte) (Value, error) {
	if f.Offset > len(buf) {
		return Value{}, fmt.Errorf("%s: %w: offset %d beyond %d bytes", f.Name, ErrShortWindow, f.Offset, len(buf))
	}
	v, err := Decode(buf[f.Offset:], f.Type, f.Scale, 0)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	return v, nil
}

// End returns the offset one past the field's last byte.
func (f Field) End() int {
	return f.Offset + f.Type.Width()
}

// History record fields.
var (
	RecordDelay       = Field{"delay", 0, UnsignedByte, 1}
	RecordInHumidity  = Field{"hum_in", 1, UnsignedByte, 1}
	RecordInTemp      = Field{"temp_in", 2, SignedShort, 0.1}
	RecordOutHumidity = Field{"hum_out", 4, UnsignedByte, 1}
	RecordOutTemp     = Field{"temp_out", 5, SignedShort, 0.1}
	RecordDewPoint    = Field{"dew_point", 4, DewPoint, 0.1}
	RecordAbsPressure = Field{"abs_pressure", 7, UnsignedShort, 0.1}
	RecordWindAvg     = Field{"wind_ave", 9, WindAverage, 0.1}
	RecordWindGust    = Field{"wind_gust", 10, WindGust, 0.1}
	RecordWindDir     = Field{"wind_dir", 12, UnsignedByte, 22.5}
	RecordRain        = Field{"rain", 13, UnsignedShort, 0.3}
	RecordStatus      = Field{"status", 15, Bitfield, 1}
)

// Settings block fields.
var (
	SettingsReadPeriod    = Field{"read_period", 16, UnsignedByte, 1}
	SettingsUnits         = Field{"units0", 17, Bitfield, 1}
	SettingsWindUnits     = Field{"units_wind_speed", 18, Bitfield, 1}
	SettingsDisplay0      = Field{"display_format0", 19, Bitfield, 1}
	SettingsDisplay1      = Field{"display_format1", 20, Bitfield, 1}
	SettingsAlarmEnable0  = Field{"alarm_enable0", 21, Bitfield, 1}
	SettingsAlarmEnable1  = Field{"alarm_enable1", 22, Bitfield, 1}
	SettingsAlarmEnable2  = Field{"alarm_enable2", 23, Bitfield, 1}
	SettingsTimezone      = Field{"timezone", 24, SignedByte, 1}
	SettingsDataRefreshed = Field{"data_refreshed", 26, UnsignedByte, 1}
	SettingsDataCount     = Field{"data_count", 27, UnsignedShort, 1}
	SettingsCurrentPos    = Field{"current_pos", 30, UnsignedShort, 1}
	SettingsRelPressure   = Field{"rel_pressure", 32, UnsignedShort, 0.1}
	SettingsAbsPressure   = Field{"abs_pressure", 34, UnsignedShort, 0.1}
	SettingsDateTime      = Field{"date_time", 43, DateTime, 1}
)

const (
	settingsMagicLength   = 2
	settingsUnknownOffset = 36
	settingsUnknownLength = 7
)

// Alarm thresholds.
var (
	AlarmInHumidityHi  = Field{"alarm.hum_in.hi", 48, UnsignedByte, 1}
	AlarmInHumidityLo  = Field{"alarm.hum_in.lo", 49, UnsignedByte, 1}
	AlarmInTempHi      = Field{"alarm.temp_in.hi", 50, SignedShort, 0.1}
	AlarmInTempLo      = Field{"alarm.temp_in.lo", 52, SignedShort, 0.1}
	AlarmOutHumidityHi = Field{"alarm.hum_out.hi", 54, UnsignedByte, 1}
	AlarmOutHumidityLo = Field{"alarm.hum_out.lo", 55, UnsignedByte, 1}
	AlarmOutTempHi     = Field{"alarm.temp_out.hi", 56, SignedShort, 0.1}
	AlarmOutTempLo     = Field{"alarm.temp_out.lo", 58, SignedShort, 0.1}
	AlarmWindChillHi   = Field{"alarm.windchill.hi", 60, SignedShort, 0.1}
	AlarmWindChillLo   = Field{"alarm.windchill.lo", 62, SignedShort, 0.1}
	AlarmDewPointHi    = Field{"alarm.dewpoint.hi", 64, SignedShort, 0.1}
	AlarmDewPointLo    = Field{"alarm.dewpoint.lo", 66, SignedShort, 0.1}
	AlarmAbsPressureHi = Field{"alarm.abs_pressure.hi", 68, SignedShort, 0.1}
	AlarmAbsPressureLo = Field{"alarm.abs_pressure.lo", 70, SignedShort, 0.1}
	AlarmRelPressureHi = Field{"alarm.rel_pressure.hi", 72, SignedShort, 0.1}
	AlarmRelPressureLo = Field{"alarm.rel_pressure.lo", 74, SignedShort, 0.1}
	AlarmWindAvgBft    = Field{"alarm.wind_ave.bft", 76, UnsignedByte, 1}
	AlarmWindAvgMS     = Field{"alarm.wind_ave.ms", 77, UnsignedByte, 0.1}
	AlarmWindGustBft   = Field{"alarm.wind_gust.bft", 79, UnsignedByte, 1}
	AlarmWindGustMS    = Field{"alarm.wind_gust.ms", 80, UnsignedByte, 0.1}
	AlarmWindDir       = Field{"alarm.wind_dir", 82, UnsignedByte, 22.5}
	AlarmRainHour      = Field{"alarm.rain.hour", 83, UnsignedShort, 0.3}
	AlarmRainDay       = Field{"alarm.rain.day", 85, UnsignedShort, 0.3}
	AlarmTime          = Field{"alarm.time", 87, TimeOfDay, 1}
)

// extremeField pairs a recorded extreme with the date it was reached.
type extremeField struct {
	Value Field
	Date  Field
}

func extreme(name string, valueOffset int, t FieldType, scale float64, dateOffset int) extremeField {
	return extremeField{
		Value: Field{name + ".val", valueOffset, t, scale},
		Date:  Field{name + ".date", dateOffset, DateTime, 1},
	}
}

var (
	maxInHumidity  = extreme("max.hum_in", 98, UnsignedByte, 1, 141)
	maxOutHumidity = extreme("max.hum_out", 100, UnsignedByte, 1, 151)
	maxInTemp      = extreme("max.temp_in", 102, SignedShort, 0.1, 161)
	maxOutTemp     = extreme("max.temp_out", 106, SignedShort, 0.1, 171)
	maxWindChill   = extreme("max.windchill", 110, SignedShort, 0.1, 181)
	maxDewPoint    = extreme("max.dewpoint", 114, SignedShort, 0.1, 191)
	maxAbsPressure = extreme("max.abs_pressure", 118, UnsignedShort, 0.1, 201)
	maxRelPressure = extreme("max.rel_pressure", 122, UnsignedShort, 0.1, 211)
	maxWindAvg     = extreme("max.wind_ave", 126, UnsignedShort, 0.1, 221)
	maxWindGust    = extreme("max.wind_gust", 128, UnsignedShort, 0.1, 226)
	maxRainHour    = extreme("max.rain.hour", 130, UnsignedShort, 0.3, 231)
	maxRainDay     = extreme("max.rain.day", 132, UnsignedShort, 0.3, 236)
	maxRainWeek    = extreme("max.rain.week", 134, UnsignedShort, 0.3, 241)
	maxRainMonth   = extreme("max.rain.month", 136, UnsignedShort, 0.3, 246)
	maxRainTotal   = extreme("max.rain.total", 138, UnsignedShort, 0.3, 251)

	minInHumidity  = extreme("min.hum_in", 99, UnsignedByte, 1, 146)
	minOutHumidity = extreme("min.hum_out", 101, UnsignedByte, 1, 156)
	minInTemp      = extreme("min.temp_in", 104, SignedShort, 0.1, 166)
	minOutTemp     = extreme("min.temp_out", 108, SignedShort, 0.1, 176)
	minWindChill   = extreme("min.windchill", 112, SignedShort, 0.1, 186)
	minDewPoint    = extreme("min.dewpoint", 116, SignedShort, 0.1, 196)
	minAbsPressure = extreme("min.abs_pressure", 120, UnsignedShort, 0.1, 206)
	minRelPressure = extreme("min.rel_pressure", 124, UnsignedShort, 0.1, 216)
)

// RecordFields lists the history record layout in offset order.
var RecordFields = []Field{
	RecordDelay, RecordInHumidity, RecordInTemp, RecordOutHumidity, RecordOutTemp,
	RecordAbsPressure, RecordWindAvg, RecordWindGust, RecordWindDir, RecordRain, RecordStatus,
}

// SettingsFields lists every decoded field of the settings block.
var SettingsFields = func() []Field {
	fields := []Field{
		SettingsReadPeriod, SettingsUnits, SettingsWindUnits, SettingsDisplay0, SettingsDisplay1,
		SettingsAlarmEnable0, SettingsAlarmEnable1, SettingsAlarmEnable2, SettingsTimezone,
		SettingsDataRefreshed, SettingsDataCount, SettingsCurrentPos, SettingsRelPressure,
		SettingsAbsPressure, SettingsDateTime,
		AlarmInHumidityHi, AlarmInHumidityLo, AlarmInTempHi, AlarmInTempLo,
		AlarmOutHumidityHi, AlarmOutHumidityLo, AlarmOutTempHi, AlarmOutTempLo,
		AlarmWindChillHi, AlarmWindChillLo, AlarmDewPointHi, AlarmDewPointLo,
		AlarmAbsPressureHi, AlarmAbsPressureLo, AlarmRelPressureHi, AlarmRelPressureLo,
		AlarmWindAvgBft, AlarmWindAvgMS, AlarmWindGustBft, AlarmWindGustMS,
		AlarmWindDir, AlarmRainHour, AlarmRainDay, AlarmTime,
	}
	for _, e := range []extremeField{
		maxInHumidity, maxOutHumidity, maxInTemp, maxOutTemp, maxWindChill, maxDewPoint,
		maxAbsPressure, maxRelPressure, maxWindAvg, maxWindGust,
		maxRainHour, maxRainDay, maxRainWeek, maxRainMonth, maxRainTotal,
		minInHumidity, minOutHumidity, minInTemp, minOutTemp, minWindChill, minDewPoint,
		minAbsPressure, minRelPressure,
	} {
		fields = append(fields, e.Value, e.Date)
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Offset < fields[j].Offset })
	return fields
}()

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(RecordFields)+len(SettingsFields))
	for _, f := range RecordFields {
		m["record."+f.Name] = f
	}
	for _, f := range SettingsFields {
		m[f.Name] = f
	}
	return m
}()

// LookupField finds a field by name. Record fields are prefixed with "record.".
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}
