// Package report renders decoded station data as views for JSON and
// MessagePack encoders and as plain-text reports.
package report

import (
	"fmt"
	"time"

	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

// Measurement is a decoded value. Value is null when the sensor had no
// reading; Text then holds the placeholder.
type Measurement struct {
	Value *float64 `json:"value" msgpack:"value"`
	Text  string   `json:"text" msgpack:"text"`
	Unit  string   `json:"unit,omitempty" msgpack:"unit,omitempty"`
}

// NewMeasurement converts v, attaching unit.
func NewMeasurement(v fo.Value, unit string) Measurement {
	m := Measurement{Text: v.String(), Unit: unit}
	if n, ok := v.Float(); ok {
		m.Value = &n
	}
	return m
}

func derived(n float64, ok bool, unit string) Measurement {
	if !ok {
		return Measurement{Text: fo.Placeholder, Unit: unit}
	}
	return Measurement{Value: &n, Text: fmt.Sprintf("%.1f", n), Unit: unit}
}

// timeText renders a date/time value, or the placeholder.
func timeText(v fo.Value, loc *time.Location) string {
	if !v.Valid {
		return fo.Placeholder
	}
	return fo.InLocation(v.Time, loc).Format("2006-01-02 15:04")
}

// EntryView is one history record.
type EntryView struct {
	Index       int         `json:"index" msgpack:"index"`
	Address     string      `json:"address" msgpack:"address"`
	Timestamp   time.Time   `json:"timestamp" msgpack:"timestamp"`
	Delay       int         `json:"delay_minutes" msgpack:"delay_minutes"`
	InTemp      Measurement `json:"in_temp" msgpack:"in_temp"`
	InHumidity  Measurement `json:"in_humidity" msgpack:"in_humidity"`
	OutTemp     Measurement `json:"out_temp" msgpack:"out_temp"`
	OutHumidity Measurement `json:"out_humidity" msgpack:"out_humidity"`
	DewPoint    Measurement `json:"dew_point" msgpack:"dew_point"`
	WindChill   Measurement `json:"wind_chill" msgpack:"wind_chill"`
	AbsPressure Measurement `json:"abs_pressure" msgpack:"abs_pressure"`
	RelPressure Measurement `json:"rel_pressure" msgpack:"rel_pressure"`
	WindAvg     Measurement `json:"wind_avg" msgpack:"wind_avg"`
	WindGust    Measurement `json:"wind_gust" msgpack:"wind_gust"`
	WindDir     Measurement `json:"wind_dir" msgpack:"wind_dir"`
	WindCompass string      `json:"wind_compass" msgpack:"wind_compass"`
	Beaufort    *int        `json:"beaufort" msgpack:"beaufort"`
	Rain        Measurement `json:"rain_total" msgpack:"rain_total"`
	RainTicks   int         `json:"rain_ticks" msgpack:"rain_ticks"`
	ContactLost bool        `json:"contact_lost" msgpack:"contact_lost"`
	Status      string      `json:"status" msgpack:"status"`
	Raw         string      `json:"raw" msgpack:"raw"`
}

// NewEntryView converts e. pressureOffset turns absolute into relative pressure.
func NewEntryView(e fo.HistoryEntry, pressureOffset float64) EntryView {
	r := e.Record
	v := EntryView{
		Index:       e.Index,
		Address:     fmt.Sprintf("0x%04X", e.Address),
		Timestamp:   e.Timestamp,
		Delay:       r.Delay,
		InTemp:      NewMeasurement(r.InTemp, "°C"),
		InHumidity:  NewMeasurement(r.InHumidity, "%"),
		OutTemp:     NewMeasurement(r.OutTemp, "°C"),
		OutHumidity: NewMeasurement(r.OutHumidity, "%"),
		DewPoint:    NewMeasurement(r.DewPoint, "°C"),
		WindChill:   NewMeasurement(r.WindChill(), "°C"),
		AbsPressure: NewMeasurement(r.AbsPressure, "hPa"),
		RelPressure: NewMeasurement(r.RelPressure(pressureOffset), "hPa"),
		WindAvg:     NewMeasurement(r.WindAvg, "m/s"),
		WindGust:    NewMeasurement(r.WindGust, "m/s"),
		WindCompass: fo.Placeholder,
		Rain:        NewMeasurement(r.Rain, "mm"),
		RainTicks:   r.RainTicks,
		ContactLost: r.Status.ContactLost(),
		Status:      r.Status.String(),
		Raw:         fmt.Sprintf("% X", r.Raw[:]),
	}
	idx, ok := r.WindDirIndex()
	v.WindDir = derived(float64(idx)*22.5, ok, "°")
	if ok {
		v.WindCompass = fo.CompassPoint(idx)
	}
	if avg, ok := r.WindAvg.Float(); ok {
		b := fo.Beaufort(avg)
		v.Beaufort = &b
	}
	return v
}

// NewEntryViews converts entries, keeping their order.
func NewEntryViews(entries []fo.HistoryEntry, pressureOffset float64) []EntryView {
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e, pressureOffset))
	}
	return views
}

// ThresholdView is an alarm high/low pair.
type ThresholdView struct {
	High Measurement `json:"high" msgpack:"high"`
	Low  Measurement `json:"low" msgpack:"low"`
}

func newThreshold(t fo.Threshold, unit string) ThresholdView {
	return ThresholdView{High: NewMeasurement(t.High, unit), Low: NewMeasurement(t.Low, unit)}
}

// ExtremeView is a recorded minimum or maximum with its date.
type ExtremeView struct {
	Measurement
	Date string `json:"date" msgpack:"date"`
}

func newExtreme(e fo.Extreme, unit string, loc *time.Location) ExtremeView {
	return ExtremeView{Measurement: NewMeasurement(e.Value, unit), Date: timeText(e.Date, loc)}
}

// SettingsView is the decoded settings block.
type SettingsView struct {
	Magic         string                   `json:"magic" msgpack:"magic"`
	ReadPeriod    int                      `json:"read_period_minutes" msgpack:"read_period_minutes"`
	Timezone      int                      `json:"timezone_cet_offset" msgpack:"timezone_cet_offset"`
	DataCount     int                      `json:"data_count" msgpack:"data_count"`
	DataCapacity  int                      `json:"data_capacity" msgpack:"data_capacity"`
	CurrentPos    string                   `json:"current_pos" msgpack:"current_pos"`
	StationTime   string                   `json:"station_time" msgpack:"station_time"`
	RelPressure   Measurement              `json:"rel_pressure" msgpack:"rel_pressure"`
	AbsPressure   Measurement              `json:"abs_pressure" msgpack:"abs_pressure"`
	Units         map[string]string        `json:"units" msgpack:"units"`
	Display       string                   `json:"display" msgpack:"display"`
	AlarmsEnabled string                   `json:"alarms_enabled" msgpack:"alarms_enabled"`
	Alarms        map[string]ThresholdView `json:"alarms" msgpack:"alarms"`
	AlarmLimits   map[string]Measurement   `json:"alarm_limits" msgpack:"alarm_limits"`
	Max           map[string]ExtremeView   `json:"max" msgpack:"max"`
	Min           map[string]ExtremeView   `json:"min" msgpack:"min"`
}

// NewSettingsView converts s, reading the station clock in loc.
func NewSettingsView(s fo.Settings, loc *time.Location) SettingsView {
	a := s.Alarms
	return SettingsView{
		Magic:        fmt.Sprintf("0x%02X%02X", s.Magic[0], s.Magic[1]),
		ReadPeriod:   s.ReadPeriod,
		Timezone:     s.Timezone,
		DataCount:    s.DataCount,
		DataCapacity: fo.HistoryMax,
		CurrentPos:   fmt.Sprintf("0x%04X", s.CurrentPos),
		StationTime:  timeText(s.StationTime, loc),
		RelPressure:  NewMeasurement(s.RelPressure, "hPa"),
		AbsPressure:  NewMeasurement(s.AbsPressure, "hPa"),
		Units: map[string]string{
			"in_temp":  s.Units.InTempUnit(),
			"out_temp": s.Units.OutTempUnit(),
			"rain":     s.Units.RainUnit(),
			"pressure": s.Units.PressureUnit(),
			"wind":     s.WindUnits.String(),
		},
		Display:       s.Display.String(),
		AlarmsEnabled: s.AlarmEnable.String(),
		Alarms: map[string]ThresholdView{
			"in_humidity":  newThreshold(a.InHumidity, "%"),
			"in_temp":      newThreshold(a.InTemp, "°C"),
			"out_humidity": newThreshold(a.OutHumidity, "%"),
			"out_temp":     newThreshold(a.OutTemp, "°C"),
			"wind_chill":   newThreshold(a.WindChill, "°C"),
			"dew_point":    newThreshold(a.DewPoint, "°C"),
			"abs_pressure": newThreshold(a.AbsPressure, "hPa"),
			"rel_pressure": newThreshold(a.RelPressure, "hPa"),
		},
		AlarmLimits: map[string]Measurement{
			"wind_avg":           NewMeasurement(a.WindAvg, "m/s"),
			"wind_avg_beaufort":  NewMeasurement(a.WindAvgBeaufort, "bft"),
			"wind_gust":          NewMeasurement(a.WindGust, "m/s"),
			"wind_gust_beaufort": NewMeasurement(a.WindGustBeaufort, "bft"),
			"wind_dir":           NewMeasurement(a.WindDir, ""),
			"rain_hour":          NewMeasurement(a.RainHour, "mm"),
			"rain_day":           NewMeasurement(a.RainDay, "mm"),
		},
		Max: map[string]ExtremeView{
			"in_humidity":  newExtreme(s.Max.InHumidity, "%", loc),
			"out_humidity": newExtreme(s.Max.OutHumidity, "%", loc),
			"in_temp":      newExtreme(s.Max.InTemp, "°C", loc),
			"out_temp":     newExtreme(s.Max.OutTemp, "°C", loc),
			"wind_chill":   newExtreme(s.Max.WindChill, "°C", loc),
			"dew_point":    newExtreme(s.Max.DewPoint, "°C", loc),
			"abs_pressure": newExtreme(s.Max.AbsPressure, "hPa", loc),
			"rel_pressure": newExtreme(s.Max.RelPressure, "hPa", loc),
			"wind_avg":     newExtreme(s.Max.WindAvg, "m/s", loc),
			"wind_gust":    newExtreme(s.Max.WindGust, "m/s", loc),
			"rain_hour":    newExtreme(s.Max.RainHour, "mm", loc),
			"rain_day":     newExtreme(s.Max.RainDay, "mm", loc),
			"rain_week":    newExtreme(s.Max.RainWeek, "mm", loc),
			"rain_month":   newExtreme(s.Max.RainMonth, "mm", loc),
			"rain_total":   newExtreme(s.Max.RainTotal, "mm", loc),
		},
		Min: map[string]ExtremeView{
			"in_humidity":  newExtreme(s.Min.InHumidity, "%", loc),
			"out_humidity": newExtreme(s.Min.OutHumidity, "%", loc),
			"in_temp":      newExtreme(s.Min.InTemp, "°C", loc),
			"out_temp":     newExtreme(s.Min.OutTemp, "°C", loc),
			"wind_chill":   newExtreme(s.Min.WindChill, "°C", loc),
			"dew_point":    newExtreme(s.Min.DewPoint, "°C", loc),
			"abs_pressure": newExtreme(s.Min.AbsPressure, "hPa", loc),
			"rel_pressure": newExtreme(s.Min.RelPressure, "hPa", loc),
		},
	}
}

// RainView is rainfall over trailing windows.
type RainView struct {
	Hour  float64 `json:"hour_mm" msgpack:"hour_mm"`
	Day   float64 `json:"day_mm" msgpack:"day_mm"`
	Week  float64 `json:"week_mm" msgpack:"week_mm"`
	Month float64 `json:"month_mm" msgpack:"month_mm"`
	// Covered is the time span actually present in the history window.
	Covered string `json:"covered" msgpack:"covered"`
}

// NewRainView computes trailing rain totals over entries (newest first).
func NewRainView(entries []fo.HistoryEntry) RainView {
	t := fo.Rain(entries)
	v := RainView{Hour: t.Hour, Day: t.Day, Week: t.Week, Month: t.Month, Covered: "0s"}
	if n := len(entries); n > 0 {
		v.Covered = entries[0].Timestamp.Sub(entries[n-1].Timestamp).String()
	}
	return v
}
