// Package config loads service and tool settings from an optional YAML/JSON
// file, PARKING_* environment overrides and the legacy deployment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/generator"
)

// EnvPrefix marks environment overrides; "__" separates nested keys,
// e.g. PARKING_SERVER__PORT=9090.
const EnvPrefix = "PARKING_"

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	ML        MLConfig        `json:"ml"`
	Generator GeneratorConfig `json:"generator"`
	Influx    InfluxConfig    `json:"influx"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	Env          string        `json:"env"`
	CORSOrigins  string        `json:"cors_origins"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.CORSOrigins == "" {
		c.CORSOrigins = "*"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

func (c ServerConfig) Validate() error {
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

// DatabaseConfig holds the PostgreSQL connection string. An empty URL runs
// the service without persistence.
type DatabaseConfig struct {
	URL string `json:"url"`
}

// MLConfig selects the historical dataset and the model used for scoring.
// ServiceURL, when set, takes precedence over ModelPath.
type MLConfig struct {
	DataPath   string `json:"data_path"`
	ModelPath  string `json:"model_path"`
	ServiceURL string `json:"service_url"`
	UseModel   *bool  `json:"use_model"`
}

func (c *MLConfig) SetDefaults() {
	if c.DataPath == "" {
		c.DataPath = "data/parking_history.json"
	}
	if c.ModelPath == "" {
		c.ModelPath = "models/occupancy_linear.json"
	}
	if c.UseModel == nil {
		t := true
		c.UseModel = &t
	}
}

// ModelEnabled reports whether a model should be loaded at all
func (c MLConfig) ModelEnabled() bool {
	return c.UseModel == nil || *c.UseModel
}

type GeneratorConfig struct {
	Start         string                           `json:"start"`
	End           string                           `json:"end"`
	Seed          *uint64                          `json:"seed"`
	Workers       int                              `json:"workers"`
	Output        string                           `json:"output"`
	Personalities map[string]generator.Personality `json:"personalities"`
}

func (c *GeneratorConfig) SetDefaults() {
	if c.Start == "" {
		c.Start = "2023-01-01T00:00:00"
	}
	if c.End == "" {
		c.End = "2024-12-31T23:00:00"
	}
	if c.Seed == nil {
		seed := uint64(42)
		c.Seed = &seed
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Output == "" {
		c.Output = "data/parking_history.json"
	}
	if len(c.Personalities) == 0 {
		c.Personalities = generator.DefaultPersonalities()
	}
}

func (c GeneratorConfig) Validate() error {
	start, end, err := c.Range()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("generator end %s before start %s", c.End, c.Start)
	}
	if c.Workers < 0 {
		return errors.New("generator workers must not be negative")
	}
	for code, p := range c.Personalities {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("generator personality %s: %w", code, err)
		}
	}
	return nil
}

// Range parses the configured start and end timestamps
func (c GeneratorConfig) Range() (time.Time, time.Time, error) {
	start, err := domain.ParseTimestamp(c.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("generator start: %w", err)
	}
	end, err := domain.ParseTimestamp(c.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("generator end: %w", err)
	}
	return start, end, nil
}

// Options converts the section into generator options
func (c GeneratorConfig) Options() (generator.Options, error) {
	start, end, err := c.Range()
	if err != nil {
		return generator.Options{}, err
	}
	var seed uint64
	if c.Seed != nil {
		seed = *c.Seed
	}
	return generator.Options{Start: start, End: end, Seed: seed, Workers: c.Workers}, nil
}

// InfluxConfig enables exporting generated series. Empty URL disables it.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c InfluxConfig) Enabled() bool { return c.URL != "" }

func (c InfluxConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Org == "" || c.Bucket == "" {
		return errors.New("influx org and bucket are required when url is set")
	}
	return nil
}

// Load reads the optional config file at path, applies environment
// overrides, fills defaults and validates every section.
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
			return nil, fmt.Errorf("config: unsupported format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}
	// PARKING_SERVER__PORT -> server.port; single underscores stay inside keys.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyLegacyEnv(&cfg)

	cfg.Server.SetDefaults()
	cfg.ML.SetDefaults()
	cfg.Generator.SetDefaults()
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Generator.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Influx.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// applyLegacyEnv honours the variables existing deployments already set
func applyLegacyEnv(cfg *Config) {
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.ML.ServiceURL = getEnv("ML_SERVICE_URL", cfg.ML.ServiceURL)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Env = getEnv("GO_ENV", cfg.Server.Env)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
