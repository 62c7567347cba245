package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/pkg/sandwich"
)

// serverConfig is the YAML configuration surface of the caregate binary.
type serverConfig struct {
	Listen    string `yaml:"listen"`
	LogFormat string `yaml:"log_format"` // text | json

	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	Audit struct {
		SQLitePath  string   `yaml:"sqlite_path"`
		PHIPatterns []string `yaml:"phi_patterns"`
	} `yaml:"audit"`

	Sandwich sandwich.Config `yaml:"sandwich"`
}

func defaultServerConfig() serverConfig {
	cfg := serverConfig{
		Listen:    ":8080",
		LogFormat: "text",
		Sandwich:  sandwich.DefaultConfig(),
	}
	cfg.Redis.Prefix = "caregate:"
	cfg.Audit.PHIPatterns = []string{"(?i)message_excerpt", "(?i)keywords"}
	return cfg
}

// loadConfig reads the YAML config at path, falling back to defaults when
// path is empty.
func loadConfig(path string) (serverConfig, error) {
	cfg := defaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg serverConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if cfg.LogFormat == "json" {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
