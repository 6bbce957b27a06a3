// Package config loads service configuration from YAML or JSON files
// with environment variable overrides (SLITPLAN_SERVER__ADDR and so
// on).
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `json:"server"`
	Planner PlannerConfig `json:"planner"`
	Solver  SolverConfig  `json:"solver"`
	Logging LoggingConfig `json:"logging"`
}

type ServerConfig struct {
	Addr string `json:"addr"`
	// MaxUploadBytes caps the size of uploaded spreadsheets.
	MaxUploadBytes int64 `json:"maxUploadBytes"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 16 << 20
	}
}

type PlannerConfig struct {
	// Workers bounds the solve pool; zero means NumCPU.
	Workers int `json:"workers"`
	// SolveTimeout is the overall deadline for one assembly run.
	// Zero disables the deadline.
	SolveTimeout time.Duration `json:"solveTimeout"`
}

func (c *PlannerConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("planner.workers must not be negative")
	}
	if c.SolveTimeout < 0 {
		return fmt.Errorf("planner.solveTimeout must not be negative")
	}
	return nil
}

type SolverConfig struct {
	// MaxCells caps the dynamic program table size per coil; zero
	// keeps the solver default.
	MaxCells int `json:"maxCells"`
}

func (c *SolverConfig) Validate() error {
	if c.MaxCells < 0 {
		return fmt.Errorf("solver.maxCells must not be negative")
	}
	return nil
}

type LoggingConfig struct {
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unsupported log level: %s", c.Level)
}

// Default returns a configuration with all defaults applied, used
// when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.SetDefaults()
	cfg.Logging.SetDefaults()
	return cfg
}

// Load reads the configuration file at path, applies environment
// overrides, defaults, and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides
	if err := k.Load(env.Provider("SLITPLAN_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "slitplan_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
