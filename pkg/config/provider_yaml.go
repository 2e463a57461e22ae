package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

type stationYAML struct {
	Name         string        `yaml:"name"`
	Transport    string        `yaml:"transport,omitempty"`
	Device       string        `yaml:"device,omitempty"`
	Address      string        `yaml:"address,omitempty"`
	SysRoot      string        `yaml:"sys_root,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Retries      int           `yaml:"retries,omitempty"`
	RetryBackoff time.Duration `yaml:"retry_backoff,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	HistoryCount int           `yaml:"history_count,omitempty"`
	Timezone     string        `yaml:"timezone,omitempty"`
}

type restServerYAML struct {
	Enabled    bool   `yaml:"enabled"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

type logYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}
	return y.parse(cfgFile)
}

func (y *YAMLProvider) parse(cfgFile []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Station    stationYAML    `yaml:"station"`
		RESTServer restServerYAML `yaml:"rest,omitempty"`
		Log        logYAML        `yaml:"log,omitempty"`
	}

	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	s := yamlConfig.Station
	r := yamlConfig.RESTServer
	l := yamlConfig.Log
	config := &ConfigData{
		Station: StationData{
			Name:         s.Name,
			Transport:    s.Transport,
			Device:       s.Device,
			Address:      s.Address,
			SysRoot:      s.SysRoot,
			Timeout:      s.Timeout,
			Retries:      s.Retries,
			RetryBackoff: s.RetryBackoff,
			PollInterval: s.PollInterval,
			HistoryCount: s.HistoryCount,
			Timezone:     s.Timezone,
		},
		RESTServer: RESTServerData{
			Enabled:    r.Enabled,
			Cert:       r.Cert,
			Key:        r.Key,
			Port:       r.Port,
			ListenAddr: r.ListenAddr,
		},
		Log: LogData{
			Debug:      l.Debug,
			File:       l.File,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
		},
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// GetStation returns the station configuration
func (y *YAMLProvider) GetStation() (*StationData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Station, nil
}

// GetRESTServer returns the HTTP view configuration
func (y *YAMLProvider) GetRESTServer() (*RESTServerData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.RESTServer, nil
}

// GetLog returns the logger configuration
func (y *YAMLProvider) GetLog() (*LogData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Log, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// IsReadOnly returns true since YAML files are treated as read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
