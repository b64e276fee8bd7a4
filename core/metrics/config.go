package metrics

import (
	"fmt"

	"github.com/kilianp07/depot/core/factory"
)

// DefaultPrometheusAddr is used when a prometheus sink is configured
// without an explicit listen address.
const DefaultPrometheusAddr = ":2112"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint.
	// Empty disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}

func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" && c.HasSink("prometheus") {
		c.PrometheusAddr = DefaultPrometheusAddr
	}
}

func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}
