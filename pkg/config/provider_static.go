package config

// StaticProvider serves configuration already held in memory, such as
// defaults overridden by command-line flags.
type StaticProvider struct {
	config *ConfigData
}

// NewStaticProvider applies defaults to cfg and validates it.
func NewStaticProvider(cfg *ConfigData) (*StaticProvider, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &StaticProvider{config: &c}, nil
}

func (p *StaticProvider) LoadConfig() (*ConfigData, error) {
	c := *p.config
	return &c, nil
}

func (p *StaticProvider) GetStation() (*StationData, error) {
	s := p.config.Station
	return &s, nil
}

func (p *StaticProvider) GetRESTServer() (*RESTServerData, error) {
	r := p.config.RESTServer
	return &r, nil
}

func (p *StaticProvider) GetLog() (*LogData, error) {
	l := p.config.Log
	return &l, nil
}

func (p *StaticProvider) IsReadOnly() bool { return true }

func (p *StaticProvider) Close() error { return nil }
