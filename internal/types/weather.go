package types

import (
	"reflect"
	"slices"
	"time"
)

// Reading is one history record converted to metric units for downstream
// consumers. Fields whose sensor value was missing hold zero and are named in
// Invalid.
type Reading struct {
	Timestamp   time.Time `json:"timestamp" msgpack:"timestamp"`
	StationName string    `json:"station_name" msgpack:"station_name"`
	StationType string    `json:"station_type" msgpack:"station_type"`
	ScanID      string    `json:"scan_id" msgpack:"scan_id"`
	Index       int       `json:"index" msgpack:"index"`
	Address     int       `json:"address" msgpack:"address"`
	Interval    int       `json:"interval" msgpack:"interval"`

	InTemp      float32 `json:"in_temp" msgpack:"in_temp"`
	InHumidity  float32 `json:"in_humidity" msgpack:"in_humidity"`
	OutTemp     float32 `json:"out_temp" msgpack:"out_temp"`
	OutHumidity float32 `json:"out_humidity" msgpack:"out_humidity"`
	DewPoint    float32 `json:"dew_point" msgpack:"dew_point"`
	WindChill   float32 `json:"wind_chill" msgpack:"wind_chill"`
	HeatIndex   float32 `json:"heat_index" msgpack:"heat_index"`
	AbsPressure float32 `json:"abs_pressure" msgpack:"abs_pressure"`
	Barometer   float32 `json:"barometer" msgpack:"barometer"`
	WindSpeed   float32 `json:"wind_speed" msgpack:"wind_speed"`
	WindGust    float32 `json:"wind_gust" msgpack:"wind_gust"`
	WindDir     float32 `json:"wind_dir" msgpack:"wind_dir"`
	RainTotal   float32 `json:"rain_total" msgpack:"rain_total"`

	RainIncremental float32 `json:"rain_incremental" msgpack:"rain_incremental"`
	ContactLost     bool    `json:"contact_lost" msgpack:"contact_lost"`

	Invalid []string `json:"invalid,omitempty" msgpack:"invalid,omitempty"`
}

// IsValid reports whether the named field carries a sensor value.
func (r *Reading) IsValid(field string) bool {
	return !slices.Contains(r.Invalid, field)
}

// ToMap returns the valid float fields keyed by field name.
func (r *Reading) ToMap() map[string]float64 {
	m := make(map[string]float64)

	v := reflect.ValueOf(*r)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() != reflect.Float32 {
			continue
		}
		name := v.Type().Field(i).Name
		if r.IsValid(name) {
			m[name] = v.Field(i).Float()
		}
	}

	return m
}
