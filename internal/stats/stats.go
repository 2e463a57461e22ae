// Package stats summarizes decoded history windows per metric.
package stats

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

// Point is one valid sample of a metric.
type Point struct {
	Time  time.Time
	Value float64
}

// Summary describes a metric over a window. Trend is the least-squares slope
// in units per hour.
type Summary struct {
	Name   string    `json:"name" msgpack:"name"`
	Unit   string    `json:"unit" msgpack:"unit"`
	Count  int       `json:"count" msgpack:"count"`
	Min    float64   `json:"min" msgpack:"min"`
	MinAt  time.Time `json:"min_at" msgpack:"min_at"`
	Max    float64   `json:"max" msgpack:"max"`
	MaxAt  time.Time `json:"max_at" msgpack:"max_at"`
	Mean   float64   `json:"mean" msgpack:"mean"`
	StdDev float64   `json:"stddev" msgpack:"stddev"`
	Trend  float64   `json:"trend_per_hour" msgpack:"trend_per_hour"`
}

// Summarize returns false when points is empty.
func Summarize(name, unit string, points []Point) (Summary, bool) {
	if len(points) == 0 {
		return Summary{}, false
	}

	values := make([]float64, len(points))
	hours := make([]float64, len(points))
	origin := points[0].Time
	for i, p := range points {
		values[i] = p.Value
		hours[i] = p.Time.Sub(origin).Hours()
	}

	minIdx, maxIdx := floats.MinIdx(values), floats.MaxIdx(values)
	s := Summary{
		Name:  name,
		Unit:  unit,
		Count: len(points),
		Min:   values[minIdx],
		MinAt: points[minIdx].Time,
		Max:   values[maxIdx],
		MaxAt: points[maxIdx].Time,
		Mean:  stat.Mean(values, nil),
	}
	if len(points) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	if floats.Max(hours) != floats.Min(hours) {
		_, s.Trend = stat.LinearRegression(hours, values, nil, false)
	}
	return s, true
}

// metric extracts one value from a history entry.
type metric struct {
	name  string
	unit  string
	value func(fineoffset.WeatherRecord) fineoffset.Value
}

func metrics(pressureOffset float64) []metric {
	return []metric{
		{"in_temp", "°C", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.InTemp }},
		{"out_temp", "°C", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.OutTemp }},
		{"in_humidity", "%", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.InHumidity }},
		{"out_humidity", "%", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.OutHumidity }},
		{"dew_point", "°C", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.DewPoint }},
		{"abs_pressure", "hPa", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.AbsPressure }},
		{"rel_pressure", "hPa", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.RelPressure(pressureOffset) }},
		{"wind_avg", "m/s", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.WindAvg }},
		{"wind_gust", "m/s", func(r fineoffset.WeatherRecord) fineoffset.Value { return r.WindGust }},
	}
}

// FromHistory summarizes every metric over entries. Invalid values are left
// out; metrics without any valid value are omitted.
func FromHistory(entries []fineoffset.HistoryEntry, pressureOffset float64) []Summary {
	var out []Summary
	for _, m := range metrics(pressureOffset) {
		points := make([]Point, 0, len(entries))
		// history is newest first; points are kept oldest first
		for i := len(entries) - 1; i >= 0; i-- {
			if v, ok := m.value(entries[i].Record).Float(); ok {
				points = append(points, Point{Time: entries[i].Timestamp, Value: v})
			}
		}
		if s, ok := Summarize(m.name, m.unit, points); ok {
			out = append(out, s)
		}
	}
	return out
}
