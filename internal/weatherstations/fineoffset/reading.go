package fineoffset

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/lzrdig/FineOffsetNET/internal/constants"
	"github.com/lzrdig/FineOffsetNET/internal/types"
	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

// NewReading converts a history entry to a Reading. prev is the entry stored
// before e and is used for incremental rain; it may be nil.
func NewReading(station, scanID string, e fo.HistoryEntry, prev *fo.HistoryEntry, pressureOffset float64) types.Reading {
	rec := e.Record
	r := types.Reading{
		Timestamp:   e.Timestamp,
		StationName: station,
		StationType: constants.StationType,
		ScanID:      scanID,
		Index:       e.Index,
		Address:     e.Address,
		Interval:    rec.Delay,
		ContactLost: rec.Status.ContactLost(),
	}

	set := func(name string, dst *float32, v fo.Value) {
		n, ok := v.Float()
		if !ok {
			r.Invalid = append(r.Invalid, name)
			return
		}
		*dst = float32(n)
	}
	set("InTemp", &r.InTemp, rec.InTemp)
	set("InHumidity", &r.InHumidity, rec.InHumidity)
	set("OutTemp", &r.OutTemp, rec.OutTemp)
	set("OutHumidity", &r.OutHumidity, rec.OutHumidity)
	set("DewPoint", &r.DewPoint, rec.DewPoint)
	set("WindChill", &r.WindChill, rec.WindChill())
	set("AbsPressure", &r.AbsPressure, rec.AbsPressure)
	set("Barometer", &r.Barometer, rec.RelPressure(pressureOffset))
	set("WindSpeed", &r.WindSpeed, rec.WindAvg)
	set("WindGust", &r.WindGust, rec.WindGust)
	set("RainTotal", &r.RainTotal, rec.Rain)

	if idx, ok := rec.WindDirIndex(); ok {
		r.WindDir = float32(idx) * 22.5
	} else {
		r.Invalid = append(r.Invalid, "WindDir")
	}

	t, okT := rec.OutTemp.Float()
	h, okH := rec.OutHumidity.Float()
	if okT && okH {
		r.HeatIndex = float32(fo.HeatIndexC(t, h))
	} else {
		r.Invalid = append(r.Invalid, "HeatIndex")
	}

	if prev != nil && rec.Rain.Valid && prev.Record.Rain.Valid {
		r.RainIncremental = float32(fo.RainOver([]fo.HistoryEntry{e, *prev}, e.Timestamp.Sub(prev.Timestamp)))
	} else {
		r.Invalid = append(r.Invalid, "RainIncremental")
	}

	return r
}

// observe records the reading's values in per-station histograms.
func observe(station string, r types.Reading) {
	for name, v := range r.ToMap() {
		metrics.GetOrCreateHistogram(fmt.Sprintf(`fineoffset_reading{station=%q,field=%q}`, station, name)).Update(v)
	}
}
