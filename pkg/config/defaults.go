package config

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied to fields left empty.
const (
	DefaultStationName  = "fineoffset"
	DefaultTimeout      = 2 * time.Second
	DefaultRetries      = 3
	DefaultRetryBackoff = 250 * time.Millisecond
	DefaultPollInterval = time.Minute
	DefaultHistoryCount = 60
	DefaultRESTPort     = 8080
	DefaultListenAddr   = "0.0.0.0"
	DefaultLogMaxSizeMB = 10

	maxHistoryCount = 4080
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default returns a configuration with every default applied, for running
// without a file.
func Default() *ConfigData {
	c := &ConfigData{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills empty fields.
func (c *ConfigData) ApplyDefaults() {
	s := &c.Station
	if s.Name == "" {
		s.Name = DefaultStationName
	}
	if s.Transport == "" {
		s.Transport = TransportAuto
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Retries == 0 {
		s.Retries = DefaultRetries
	}
	if s.RetryBackoff == 0 {
		s.RetryBackoff = DefaultRetryBackoff
	}
	if s.PollInterval == 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.HistoryCount == 0 {
		s.HistoryCount = DefaultHistoryCount
	}

	if c.RESTServer.Port == 0 {
		c.RESTServer.Port = DefaultRESTPort
	}
	if c.RESTServer.ListenAddr == "" {
		c.RESTServer.ListenAddr = DefaultListenAddr
	}

	if c.Log.File != "" && c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
}

// Validate reports every problem at once.
func (c *ConfigData) Validate() error {
	var errs []error
	s := c.Station

	switch s.Transport {
	case TransportAuto, TransportHIDRaw:
	case TransportNetwork:
		if s.Address == "" {
			errs = append(errs, fmt.Errorf("station [%s]: network transport needs an address", s.Name))
		}
	default:
		errs = append(errs, fmt.Errorf("station [%s]: unknown transport %q", s.Name, s.Transport))
	}
	if s.Timeout < 0 || s.RetryBackoff < 0 {
		errs = append(errs, fmt.Errorf("station [%s]: negative timeout or backoff", s.Name))
	}
	if s.Retries < 1 {
		errs = append(errs, fmt.Errorf("station [%s]: retries must be at least 1", s.Name))
	}
	if s.PollInterval < time.Second {
		errs = append(errs, fmt.Errorf("station [%s]: poll_interval %v below 1s", s.Name, s.PollInterval))
	}
	if s.HistoryCount < 1 || s.HistoryCount > maxHistoryCount {
		errs = append(errs, fmt.Errorf("station [%s]: history_count %d outside [1, %d]", s.Name, s.HistoryCount, maxHistoryCount))
	}
	if _, err := s.Location(); err != nil {
		errs = append(errs, fmt.Errorf("station [%s]: timezone: %w", s.Name, err))
	}

	r := c.RESTServer
	if r.Port < 1 || r.Port > 65535 {
		errs = append(errs, fmt.Errorf("rest: port %d out of range", r.Port))
	}
	if (r.Cert == "") != (r.Key == "") {
		errs = append(errs, errors.New("rest: cert and key must be given together"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
