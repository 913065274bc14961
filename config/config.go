package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/dispatch"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/metrics"
	"github.com/kilianp07/socketsched/core/runlog"
	"github.com/kilianp07/socketsched/infra/mqtt"
)

type Config struct {
	Allocation AllocationConfig `json:"allocation"`
	Generator  generator.Config `json:"generator"`
	Benchmark  benchmark.Config `json:"benchmark"`
	Metrics    metrics.Config   `json:"metrics"`
	RunLog     runlog.Config    `json:"runlog"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Dispatch   dispatch.Config  `json:"dispatch"`
	Sentry     SentryConfig     `json:"sentry"`
	API        APIConfig        `json:"api"`
}

// Load reads the configuration file at path. An empty path yields the
// defaults. Environment variables prefixed with K_ override file values,
// with "__" separating nested keys (K_ALLOCATION__ALGORITHMS...).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
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

// SetDefaults fills every section. The MQTT section is only defaulted when
// a broker is configured.
func (c *Config) SetDefaults() {
	c.Allocation.SetDefaults(strings.ToLower(os.Getenv("APP_ENV")) != "prod")
	c.Generator.SetDefaults()
	c.Benchmark.SetDefaults()
	c.API.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

func (c *Config) Validate() error {
	if err := c.Allocation.Validate(); err != nil {
		return fmt.Errorf("allocation: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Benchmark.Validate(); err != nil {
		return err
	}
	if err := c.RunLog.Validate(); err != nil {
		return err
	}
	if c.Dispatch.AckTimeoutMS < 0 {
		return fmt.Errorf("dispatch: ack_timeout_ms must not be negative")
	}
	return nil
}
