package weatherstations

// WeatherStation is a console backend that polls in the background once
// started and publishes what it reads.
type WeatherStation interface {
	StartWeatherStation() error
	StationName() string
	Close() error
}
