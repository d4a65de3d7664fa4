package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML
type Config struct {
	Storage struct {
		// Type selects the backend: "memory", "redis" or "postgres"
		Type string `yaml:"type"`
	} `yaml:"storage"`
	Redis struct {
		URL          string `yaml:"url"`
		PoolSize     int    `yaml:"pool_size"`
		MinIdleConns int    `yaml:"min_idle_conns"`
	} `yaml:"redis"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Logging struct {
		// Level is one of "debug", "info", "warn", "error"
		Level string `yaml:"level"`
		// Format is "json" or "text"
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is given:
// in-memory storage with info-level text logging.
func Default() Config {
	cfg := Config{}
	cfg.Storage.Type = "memory"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

// Load reads YAML config from path, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
