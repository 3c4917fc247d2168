// Package config loads server configuration from an optional YAML file
// with environment variable overrides. Everything has a default; a
// missing config file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
}

// Load reads the YAML file at path when it exists, applies MAKOLET_*
// environment overrides, and fills in defaults. An empty path checks
// ./makolet.yaml.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = "makolet.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	envOverride(&cfg.Port, "MAKOLET_PORT")
	envOverride(&cfg.DBPath, "MAKOLET_DB_PATH")
	envOverride(&cfg.LogLevel, "MAKOLET_LOG_LEVEL")

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "makolet.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func envOverride(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
