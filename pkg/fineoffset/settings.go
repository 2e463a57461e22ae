package fineoffset

import (
	"errors"
	"fmt"
	"time"
)

// Threshold is a high/low alarm pair.
type Threshold struct {
	High Value
	Low  Value
}

// Alarms are the console alarm thresholds.
type Alarms struct {
	InHumidity  Threshold
	InTemp      Threshold
	OutHumidity Threshold
	OutTemp     Threshold
	WindChill   Threshold
	DewPoint    Threshold
	AbsPressure Threshold
	RelPressure Threshold

	WindAvgBeaufort  Value
	WindAvg          Value
	WindGustBeaufort Value
	WindGust         Value
	WindDir          Value
	RainHour         Value
	RainDay          Value
	Time             Value
}

// Extreme is a recorded minimum or maximum and the date it was reached.
// DateRaw holds the five BCD bytes exactly as stored.
type Extreme struct {
	Value   Value
	Date    Value
	DateRaw [5]byte
}

// Maximums are the all-time maxima kept by the console.
type Maximums struct {
	InHumidity  Extreme
	OutHumidity Extreme
	InTemp      Extreme
	OutTemp     Extreme
	WindChill   Extreme
	DewPoint    Extreme
	AbsPressure Extreme
	RelPressure Extreme
	WindAvg     Extreme
	WindGust    Extreme
	RainHour    Extreme
	RainDay     Extreme
	RainWeek    Extreme
	RainMonth   Extreme
	RainTotal   Extreme
}

// Minimums are the all-time minima kept by the console.
type Minimums struct {
	InHumidity  Extreme
	OutHumidity Extreme
	InTemp      Extreme
	OutTemp     Extreme
	WindChill   Extreme
	DewPoint    Extreme
	AbsPressure Extreme
	RelPressure Extreme
}

// Settings is the decoded 256-byte fixed block.
type Settings struct {
	Magic         [settingsMagicLength]byte
	ReadPeriod    int // minutes between stored records
	Units         UnitFlags
	WindUnits     WindUnitFlags
	Display       DisplayFlags
	AlarmEnable   AlarmFlags
	Timezone      int // hours from CET
	DataRefreshed byte
	DataCount     int
	CurrentPos    int
	RelPressure   Value
	AbsPressure   Value
	Unknown       [settingsUnknownLength]byte
	StationTime   Value
	Alarms        Alarms
	Max           Maximums
	Min           Minimums
}

// Clock returns the station date and time anchored in loc.
func (s Settings) Clock(loc *time.Location) (time.Time, bool) {
	if !s.StationTime.Valid {
		return time.Time{}, false
	}
	return InLocation(s.StationTime.Time, loc), true
}

// PressureOffset is the correction the console applies to turn absolute into
// relative pressure, in hPa.
func (s Settings) PressureOffset() (float64, bool) {
	rel, okRel := s.RelPressure.Float()
	abs, okAbs := s.AbsPressure.Float()
	if !okRel || !okAbs {
		return 0, false
	}
	return rel - abs, true
}

// settingsReader decodes fields from a block and remembers the first failure
// so the decoder body stays linear.
type settingsReader struct {
	block []byte
	err   error
}

func (r *settingsReader) value(f Field) Value {
	if r.err != nil {
		return Value{}
	}
	v, err := f.Decode(r.block)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *settingsReader) threshold(hi, lo Field) Threshold {
	return Threshold{High: r.value(hi), Low: r.value(lo)}
}

func (r *settingsReader) extreme(e extremeField) Extreme {
	x := Extreme{Value: r.value(e.Value), Date: r.value(e.Date)}
	copy(x.DateRaw[:], r.block[e.Date.Offset:e.Date.End()])
	return x
}

func (r *settingsReader) byteAt(f Field) byte {
	return r.block[f.Offset]
}

// DecodeSettings decodes a settings block. Blocks shorter than
// SettingsBlockSize fail with ErrMalformedBlock; longer input is truncated.
// Cross-field constraints are checked after every field is decoded and all
// violations are reported together, wrapped in ErrInvalidSettings. On any
// error the returned Settings is the zero value.
func DecodeSettings(block []byte) (Settings, error) {
	if len(block) < SettingsBlockSize {
		return Settings{}, fmt.Errorf("%w: %d of %d bytes", ErrMalformedBlock, len(block), SettingsBlockSize)
	}
	r := &settingsReader{block: block[:SettingsBlockSize]}

	var s Settings
	copy(s.Magic[:], r.block[:settingsMagicLength])
	copy(s.Unknown[:], r.block[settingsUnknownOffset:settingsUnknownOffset+settingsUnknownLength])

	s.ReadPeriod = int(r.byteAt(SettingsReadPeriod))
	s.Units = UnitFlags(r.byteAt(SettingsUnits))
	s.WindUnits = WindUnitFlags(r.byteAt(SettingsWindUnits))
	s.Display = DisplayFlags(r.byteAt(SettingsDisplay0)) | DisplayFlags(r.byteAt(SettingsDisplay1))<<8
	s.AlarmEnable = AlarmFlags(r.byteAt(SettingsAlarmEnable0)) |
		AlarmFlags(r.byteAt(SettingsAlarmEnable1))<<8 |
		AlarmFlags(r.byteAt(SettingsAlarmEnable2))<<16
	s.Timezone = signMagnitude8(r.byteAt(SettingsTimezone))
	s.DataRefreshed = r.byteAt(SettingsDataRefreshed)
	s.DataCount = int(le16(r.block[SettingsDataCount.Offset:]))
	s.CurrentPos = int(le16(r.block[SettingsCurrentPos.Offset:]))
	s.RelPressure = r.value(SettingsRelPressure)
	s.AbsPressure = r.value(SettingsAbsPressure)
	s.StationTime = r.value(SettingsDateTime)

	s.Alarms = Alarms{
		InHumidity:       r.threshold(AlarmInHumidityHi, AlarmInHumidityLo),
		InTemp:           r.threshold(AlarmInTempHi, AlarmInTempLo),
		OutHumidity:      r.threshold(AlarmOutHumidityHi, AlarmOutHumidityLo),
		OutTemp:          r.threshold(AlarmOutTempHi, AlarmOutTempLo),
		WindChill:        r.threshold(AlarmWindChillHi, AlarmWindChillLo),
		DewPoint:         r.threshold(AlarmDewPointHi, AlarmDewPointLo),
		AbsPressure:      r.threshold(AlarmAbsPressureHi, AlarmAbsPressureLo),
		RelPressure:      r.threshold(AlarmRelPressureHi, AlarmRelPressureLo),
		WindAvgBeaufort:  r.value(AlarmWindAvgBft),
		WindAvg:          r.value(AlarmWindAvgMS),
		WindGustBeaufort: r.value(AlarmWindGustBft),
		WindGust:         r.value(AlarmWindGustMS),
		WindDir:          r.value(AlarmWindDir),
		RainHour:         r.value(AlarmRainHour),
		RainDay:          r.value(AlarmRainDay),
		Time:             r.value(AlarmTime),
	}

	s.Max = Maximums{
		InHumidity:  r.extreme(maxInHumidity),
		OutHumidity: r.extreme(maxOutHumidity),
		InTemp:      r.extreme(maxInTemp),
		OutTemp:     r.extreme(maxOutTemp),
		WindChill:   r.extreme(maxWindChill),
		DewPoint:    r.extreme(maxDewPoint),
		AbsPressure: r.extreme(maxAbsPressure),
		RelPressure: r.extreme(maxRelPressure),
		WindAvg:     r.extreme(maxWindAvg),
		WindGust:    r.extreme(maxWindGust),
		RainHour:    r.extreme(maxRainHour),
		RainDay:     r.extreme(maxRainDay),
		RainWeek:    r.extreme(maxRainWeek),
		RainMonth:   r.extreme(maxRainMonth),
		RainTotal:   r.extreme(maxRainTotal),
	}

	s.Min = Minimums{
		InHumidity:  r.extreme(minInHumidity),
		OutHumidity: r.extreme(minOutHumidity),
		InTemp:      r.extreme(minInTemp),
		OutTemp:     r.extreme(minOutTemp),
		WindChill:   r.extreme(minWindChill),
		DewPoint:    r.extreme(minDewPoint),
		AbsPressure: r.extreme(minAbsPressure),
		RelPressure: r.extreme(minRelPressure),
	}

	if r.err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrMalformedBlock, r.err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the constraints that tie the ring bookkeeping fields to
// the memory geometry.
func (s Settings) Validate() error {
	var errs []error
	if s.CurrentPos < HistoryStart || s.CurrentPos >= HistoryEnd {
		errs = append(errs, fmt.Errorf("current_pos 0x%04X outside [0x%04X, 0x%05X)", s.CurrentPos, HistoryStart, HistoryEnd))
	} else if (s.CurrentPos-HistoryStart)%ChunkSize != 0 {
		errs = append(errs, fmt.Errorf("current_pos 0x%04X not aligned to %d-byte records", s.CurrentPos, ChunkSize))
	}
	if s.DataCount > HistoryMax {
		errs = append(errs, fmt.Errorf("data_count %d exceeds %d", s.DataCount, HistoryMax))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}
