package session

import (
	"fmt"

	"github.com/kilianp07/depot/core/model"
)

// Config defines session settings.
type Config struct {
	// DefaultCapacity is used for vehicles registered without a positive capacity.
	DefaultCapacity int `json:"default_capacity"`
	// ReportTimeoutSeconds bounds the end-of-day report write.
	ReportTimeoutSeconds int `json:"report_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DefaultCapacity == 0 {
		c.DefaultCapacity = model.DefaultCapacity
	}
	if c.ReportTimeoutSeconds == 0 {
		c.ReportTimeoutSeconds = 5
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.DefaultCapacity < 0 {
		return fmt.Errorf("session: default_capacity must be positive")
	}
	if c.ReportTimeoutSeconds < 0 {
		return fmt.Errorf("session: report_timeout_seconds must not be negative")
	}
	return nil
}
