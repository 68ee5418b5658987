// Package config loads the optional per-user config file. Everything in it
// can also be supplied through environment variables, which take precedence.
package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const EnvPath = "BINANCE_CLI_CONFIG"

type Config struct {
	Spot      Venue `yaml:"spot"`
	UMFutures Venue `yaml:"um_futures"`
	CMFutures Venue `yaml:"cm_futures"`
}

type Venue struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	StreamURL string `yaml:"stream_url"`
}

// DefaultPath is where the config file is looked up when BINANCE_CLI_CONFIG
// is not set.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".binance-cli.yaml")
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("config must contain a single YAML document")
		}
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but treats a missing file as an empty config.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	return cfg, err
}

func (c *Config) normalize() {
	for _, v := range []*Venue{&c.Spot, &c.UMFutures, &c.CMFutures} {
		v.APIKey = strings.TrimSpace(v.APIKey)
		v.APISecret = strings.TrimSpace(v.APISecret)
		v.BaseURL = strings.TrimSpace(v.BaseURL)
		v.StreamURL = strings.TrimSpace(v.StreamURL)
	}
}

func (c Config) Validate() error {
	venues := map[string]Venue{
		"spot":       c.Spot,
		"um_futures": c.UMFutures,
		"cm_futures": c.CMFutures,
	}
	for name, v := range venues {
		if v.BaseURL != "" {
			if err := validateURL(v.BaseURL, "http", "https"); err != nil {
				return fmt.Errorf("%s.base_url %v", name, err)
			}
		}
		if v.StreamURL != "" {
			if err := validateURL(v.StreamURL, "ws", "wss"); err != nil {
				return fmt.Errorf("%s.stream_url %v", name, err)
			}
		}
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
