package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/infra/monitoring"
)

// DefaultProfilePath is the workbook holding the reference load data.
const DefaultProfilePath = "LoadDataFormat1.08.2018.xlsx"

type Config struct {
	Run        RunConfig              `json:"run"`
	Profile    factory.ModuleConfig   `json:"profile"`
	Catalog    factory.ModuleConfig   `json:"catalog"`
	Outputs    []factory.ModuleConfig `json:"outputs"`
	Metrics    metrics.Config         `json:"metrics"`
	Logging    LoggingConfig          `json:"logging"`
	Monitoring monitoring.Config      `json:"monitoring"`
}

// Load reads the configuration file at path and applies K_ environment
// overrides, e.g. K_RUN__NODES=16. An empty path loads defaults plus
// environment only.
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
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
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

// Default returns a configuration reproducing the reference batch run.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Run.SetDefaults()
	c.Logging.SetDefaults()
	if c.Profile.Type == "" {
		c.Profile.Type = "xlsx"
		if c.Profile.Conf == nil {
			c.Profile.Conf = map[string]any{"path": DefaultProfilePath}
		}
	}
	if c.Catalog.Type == "" {
		c.Catalog.Type = "json"
	}
	if len(c.Outputs) == 0 {
		c.Outputs = []factory.ModuleConfig{{Type: "json"}}
	}
	if len(c.Metrics.Sinks) == 0 {
		c.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for i, o := range c.Outputs {
		if o.Type == "" {
			return fmt.Errorf("outputs[%d]: type is required", i)
		}
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}

// SetOutputPath overrides the path of the primary output.
func (c *Config) SetOutputPath(path string) {
	if len(c.Outputs) == 0 {
		c.Outputs = []factory.ModuleConfig{{Type: "json"}}
	}
	conf := make(map[string]any, len(c.Outputs[0].Conf)+1)
	for k, v := range c.Outputs[0].Conf {
		conf[k] = v
	}
	conf["path"] = path
	c.Outputs[0].Conf = conf
}
