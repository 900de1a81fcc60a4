// Package clientconfig loads the terminal client's configuration.
package clientconfig

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is everything the client needs to reach the server.
type Config struct {
	ServerURL      string `koanf:"server_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		ServerURL:      "http://localhost:8080",
		TimeoutSeconds: 15,
	}
}

// Load layers the configuration: defaults, then an optional YAML file named
// by CALENDER_CONFIG, then CALENDER_-prefixed environment variables.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CALENDER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("CALENDER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "calender_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		return nil, errors.New("server_url must not be empty")
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, errors.New("timeout_seconds must be positive")
	}
	return &cfg, nil
}
