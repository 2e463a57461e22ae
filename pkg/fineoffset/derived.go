package fineoffset

import "math"

// Magnus coefficients over water.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// DewPointC computes the dew point in °C from temperature in °C and relative
// humidity in percent.
func DewPointC(tempC, humidity float64) float64 {
	gamma := (magnusA*tempC)/(magnusB+tempC) + math.Log(humidity/100)
	return (magnusB * gamma) / (magnusA - gamma)
}

// WindChillC applies the NWS wind chill formula. It returns the air
// temperature when it is above 10 °C or the wind is below 1.34 m/s (3 mph).
func WindChillC(tempC, windMS float64) float64 {
	tempF := cToF(tempC)
	mph := windMS * msToMPH
	if tempF > 50 || mph < 3 {
		return tempC
	}
	v := math.Pow(mph, 0.16)
	return fToC(35.74 + 0.6215*tempF - 35.75*v + 0.4275*tempF*v)
}

// HeatIndexC applies the NWS Rothfusz regression. Below 26.7 °C (80 °F) it
// returns the air temperature.
func HeatIndexC(tempC, humidity float64) float64 {
	t := cToF(tempC)
	if t < 80 {
		return tempC
	}
	h := humidity
	hi := -42.379 + 2.04901523*t + 10.14333127*h - 0.22475541*t*h - 0.00683783*t*t -
		0.05481717*h*h + 0.00122874*t*t*h + 0.00085282*t*h*h - 0.00000199*t*t*h*h
	return fToC(hi)
}

const msToMPH = 2.2369362920544

func cToF(c float64) float64 { return c*1.8 + 32 }
func fToC(f float64) float64 { return (f - 32) / 1.8 }

// upper bounds in m/s of Beaufort forces 0..11
var beaufortLimits = [...]float64{0.3, 1.6, 3.4, 5.5, 8.0, 10.8, 13.9, 17.2, 20.8, 24.5, 28.5, 32.7}

// Beaufort converts a wind speed in m/s to force 0..12.
func Beaufort(windMS float64) int {
	for force, limit := range beaufortLimits {
		if windMS < limit {
			return force
		}
	}
	return len(beaufortLimits)
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint names the 16-point direction for index 0..15.
func CompassPoint(index int) string {
	if index < 0 || index >= len(compassPoints) {
		return Placeholder
	}
	return compassPoints[index]
}
