package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/depot/core/metrics"
	"github.com/kilianp07/depot/core/report"
	"github.com/kilianp07/depot/core/session"
	"github.com/kilianp07/depot/infra/mqtt"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are joined
// with a double underscore: K_MQTT__BROKER sets mqtt.broker.
const EnvPrefix = "K_"

type Config struct {
	Session session.Config `json:"session"`
	Reports report.Config  `json:"reports"`
	Metrics metrics.Config `json:"metrics"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Sentry  SentryConfig   `json:"sentry"`
}

// Load reads the file at path, applies environment overrides, fills
// defaults and validates every section. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

func (c *Config) SetDefaults() {
	c.Session.SetDefaults()
	c.Reports.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate reports every invalid section at once.
func (c Config) Validate() error {
	return errors.Join(
		c.Session.Validate(),
		c.Reports.Validate(),
		c.Metrics.Validate(),
		c.MQTT.Validate(),
		c.Sentry.Validate(),
	)
}
