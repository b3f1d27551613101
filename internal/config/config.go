// Package config loads server settings from an optional TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds the viewer settings.
type Config struct {
	// Port the HTTP server listens on.
	Port string `toml:"port"`
	// Backend selects the file reader: "netcdf" or "cdf".
	Backend string `toml:"backend"`
	// ConcatDim is the dimension multi-file datasets are joined along.
	ConcatDim string `toml:"concat_dim"`
	// AllowedOrigins lists CORS origins. Empty allows all.
	AllowedOrigins []string `toml:"allowed_origins"`
	// LogLevel is a logrus level name.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:      "8080",
		Backend:   "netcdf",
		ConcatDim: "time",
		LogLevel:  "info",
	}
}

// Load reads path (if not empty) over the defaults, then applies the
// PORT, NCVIEW_BACKEND, NCVIEW_CONCAT_DIM, CORS_ALLOWED_ORIGINS and
// LOG_LEVEL environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to open %s: %w", path, err)
		}
		defer f.Close()
		if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Backend = getEnv("NCVIEW_BACKEND", cfg.Backend)
	cfg.ConcatDim = getEnv("NCVIEW_CONCAT_DIM", cfg.ConcatDim)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if _, err := cfg.Level(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
