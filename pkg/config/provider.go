package config

import "time"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, defaults applied and validated
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStation() (*StationData, error)
	GetRESTServer() (*RESTServerData, error)
	GetLog() (*LogData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Station    StationData    `json:"station"`
	RESTServer RESTServerData `json:"rest,omitempty"`
	Log        LogData        `json:"log,omitempty"`
}

// Transport kinds for StationData.Transport
const (
	TransportAuto    = "auto"
	TransportHIDRaw  = "hidraw"
	TransportNetwork = "network"
)

// StationData holds configuration for the weather station connection
type StationData struct {
	Name      string `json:"name"`
	Transport string `json:"transport,omitempty"`
	// Device is the hidraw node; empty means discover by USB id
	Device  string `json:"device,omitempty"`
	Address string `json:"address,omitempty"`
	SysRoot string `json:"sys_root,omitempty"`

	Timeout      time.Duration `json:"timeout,omitempty"`
	Retries      int           `json:"retries,omitempty"`
	RetryBackoff time.Duration `json:"retry_backoff,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	HistoryCount int           `json:"history_count,omitempty"`

	// Timezone is the IANA zone the console clock is read in
	Timezone string `json:"timezone,omitempty"`
}

// Location resolves Timezone, falling back to the local zone when empty.
func (s StationData) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// RESTServerData holds the configuration for the HTTP view
type RESTServerData struct {
	Enabled    bool   `json:"enabled"`
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// LogData controls the application logger
type LogData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}
