package fineoffset

import "strings"

// UnitFlags is the units0 byte of the settings block.
type UnitFlags uint8

const (
	UnitInTempFahrenheit  UnitFlags = 0x01
	UnitOutTempFahrenheit UnitFlags = 0x02
	UnitRainInch          UnitFlags = 0x04
	UnitPressureHPa       UnitFlags = 0x20
	UnitPressureInHg      UnitFlags = 0x40
	UnitPressureMmHg      UnitFlags = 0x80
)

func (u UnitFlags) Has(f UnitFlags) bool { return u&f != 0 }

// InTempUnit returns "F" or "C".
func (u UnitFlags) InTempUnit() string {
	if u.Has(UnitInTempFahrenheit) {
		return "F"
	}
	return "C"
}

// OutTempUnit returns "F" or "C".
func (u UnitFlags) OutTempUnit() string {
	if u.Has(UnitOutTempFahrenheit) {
		return "F"
	}
	return "C"
}

// RainUnit returns "in" or "mm".
func (u UnitFlags) RainUnit() string {
	if u.Has(UnitRainInch) {
		return "in"
	}
	return "mm"
}

// PressureUnit returns the pressure unit shown on the console.
func (u UnitFlags) PressureUnit() string {
	switch {
	case u.Has(UnitPressureInHg):
		return "inHg"
	case u.Has(UnitPressureMmHg):
		return "mmHg"
	default:
		return "hPa"
	}
}

// WindUnitFlags is the units_wind_speed byte.
type WindUnitFlags uint8

const (
	WindUnitMS       WindUnitFlags = 0x01
	WindUnitKMH      WindUnitFlags = 0x02
	WindUnitKnot     WindUnitFlags = 0x04
	WindUnitMPH      WindUnitFlags = 0x08
	WindUnitBeaufort WindUnitFlags = 0x10
)

func (w WindUnitFlags) String() string {
	switch {
	case w&WindUnitKMH != 0:
		return "km/h"
	case w&WindUnitKnot != 0:
		return "knot"
	case w&WindUnitMPH != 0:
		return "mph"
	case w&WindUnitBeaufort != 0:
		return "bft"
	default:
		return "m/s"
	}
}

// DisplayFlags holds display_format0 in the low byte and display_format1 in
// the high byte.
type DisplayFlags uint16

const (
	DisplayRelativePressure DisplayFlags = 1 << iota
	DisplayWindGust
	Display12Hour
	DisplayMMDDYY
	DisplayTimeScale12Hour
	DisplayDateComplete
	DisplayDateAndWeekday
	DisplayAlarmTime
	DisplayOutTemp
	DisplayOutWindChill
	DisplayOutDewPoint
	DisplayRainHour
	DisplayRainDay
	DisplayRainWeek
	DisplayRainMonth
	DisplayRainTotal
)

var displayNames = []string{
	"rel_pressure", "wind_gust", "12h", "mmddyy", "timescale_12h", "date_complete",
	"date_and_weekday", "alarm_time", "out_temp", "out_windchill", "out_dewpoint",
	"rain_1h", "rain_24h", "rain_week", "rain_month", "rain_total",
}

func (d DisplayFlags) Has(f DisplayFlags) bool { return d&f != 0 }

func (d DisplayFlags) String() string {
	return flagNames(uint32(d), displayNames)
}

// AlarmFlags holds alarm_enable0..2 as bytes 0..2 of a 24-bit set.
type AlarmFlags uint32

const (
	AlarmTimeEnabled     AlarmFlags = 0x02
	AlarmWindDirEnabled  AlarmFlags = 0x04
	AlarmInHumidityLow   AlarmFlags = 0x10
	AlarmInHumidityHigh  AlarmFlags = 0x20
	AlarmOutHumidityLow  AlarmFlags = 0x40
	AlarmOutHumidityHigh AlarmFlags = 0x80
	AlarmWindAvgEnabled  AlarmFlags = 0x01 << 8
	AlarmWindGustEnabled AlarmFlags = 0x02 << 8
	AlarmRainHourEnabled AlarmFlags = 0x04 << 8
	AlarmRainDayEnabled  AlarmFlags = 0x08 << 8
	AlarmAbsPressureLow  AlarmFlags = 0x10 << 8
	AlarmAbsPressureHigh AlarmFlags = 0x20 << 8
	AlarmRelPressureLow  AlarmFlags = 0x40 << 8
	AlarmRelPressureHigh AlarmFlags = 0x80 << 8
	AlarmInTempLow       AlarmFlags = 0x01 << 16
	AlarmInTempHigh      AlarmFlags = 0x02 << 16
	AlarmOutTempLow      AlarmFlags = 0x04 << 16
	AlarmOutTempHigh     AlarmFlags = 0x08 << 16
	AlarmWindChillLow    AlarmFlags = 0x10 << 16
	AlarmWindChillHigh   AlarmFlags = 0x20 << 16
	AlarmDewPointLow     AlarmFlags = 0x40 << 16
	AlarmDewPointHigh    AlarmFlags = 0x80 << 16
)

var alarmNames = []string{
	"", "time", "wind_dir", "", "hum_in_lo", "hum_in_hi", "hum_out_lo", "hum_out_hi",
	"wind_ave", "wind_gust", "rain_1h", "rain_24h", "abs_p_lo", "abs_p_hi", "rel_p_lo", "rel_p_hi",
	"temp_in_lo", "temp_in_hi", "temp_out_lo", "temp_out_hi", "windchill_lo", "windchill_hi", "dewpoint_lo", "dewpoint_hi",
}

func (a AlarmFlags) Has(f AlarmFlags) bool { return a&f != 0 }

func (a AlarmFlags) String() string {
	return flagNames(uint32(a), alarmNames)
}

// Status is the status byte of a history record.
type Status uint8

const (
	StatusContactLost  Status = 0x40
	StatusRainOverflow Status = 0x80
)

// ContactLost reports that the base unit lost contact with the outdoor sensors.
func (s Status) ContactLost() bool { return s&StatusContactLost != 0 }

// RainOverflow reports that the rain counter wrapped.
func (s Status) RainOverflow() bool { return s&StatusRainOverflow != 0 }

func (s Status) String() string {
	var parts []string
	if s.ContactLost() {
		parts = append(parts, "contact_lost")
	}
	if s.RainOverflow() {
		parts = append(parts, "rain_overflow")
	}
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, ",")
}

func flagNames(bits uint32, names []string) string {
	var set []string
	for i, name := range names {
		if name != "" && bits&(1<<uint(i)) != 0 {
			set = append(set, name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ",")
}
