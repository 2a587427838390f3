package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr            string    `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel        string    `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string    `json:"log_format" yaml:"log_format" toml:"log_format"`
	// RequestLogLevel is the default per-request log level; empty keeps BOOKMARKD_REQUEST_LOG.
	RequestLogLevel string    `json:"request_log_level" yaml:"request_log_level" toml:"request_log_level"`
	MaxBodyBytes    int64     `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	ShutdownTimeout float64   `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	CORS            CORS      `json:"cors" yaml:"cors" toml:"cors"`
	Storage         Storage   `json:"storage" yaml:"storage" toml:"storage"`
	Messaging       Messaging `json:"messaging" yaml:"messaging" toml:"messaging"`
}

// CORS controls cross-origin access for the bookmarklet and browser extension.
type CORS struct {
	Enabled        *bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Storage selects the bookmark store driver.
type Storage struct {
	Driver   string  `json:"driver" yaml:"driver" toml:"driver"`
	Path     string  `json:"path" yaml:"path" toml:"path"`
	URL      string  `json:"url" yaml:"url" toml:"url"`
	Bucket   string  `json:"bucket" yaml:"bucket" toml:"bucket"`
	Hostname string  `json:"hostname" yaml:"hostname" toml:"hostname"`
	Timeout  float64 `json:"timeout" yaml:"timeout" toml:"timeout"`
}

// Messaging is the raw notification section. It is validated by notify.Load.
type Messaging struct {
	Enabled         bool                `json:"enabled" yaml:"enabled" toml:"enabled"`
	Clients         map[string]Client   `json:"clients" yaml:"clients" toml:"clients"`
	CategoryRouting map[string][]string `json:"category_routing" yaml:"category_routing" toml:"category_routing"`
}

// Client is one messaging backend entry. Type defaults to the map key.
type Client struct {
	Enabled         bool                  `json:"enabled" yaml:"enabled" toml:"enabled"`
	Type            string                `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	APIURL          string                `json:"api_url" yaml:"api_url" toml:"api_url"`
	Sender          string                `json:"sender" yaml:"sender" toml:"sender"`
	AccessToken     string                `json:"access_token,omitempty" yaml:"access_token,omitempty" toml:"access_token,omitempty"`
	Session         string                `json:"session,omitempty" yaml:"session,omitempty" toml:"session,omitempty"`
	Recipients      map[string]Recipients `json:"recipients" yaml:"recipients" toml:"recipients"`
	MessageTemplate string                `json:"message_template,omitempty" yaml:"message_template,omitempty" toml:"message_template,omitempty"`
	// Timeout is in seconds; nil means the default.
	Timeout    *float64 `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	RatePerSec float64  `json:"rate_per_sec,omitempty" yaml:"rate_per_sec,omitempty" toml:"rate_per_sec,omitempty"`
}

// Recipients lists individual and group destinations for one category.
type Recipients struct {
	Individuals []string `json:"individuals" yaml:"individuals" toml:"individuals"`
	Groups      []string `json:"groups" yaml:"groups" toml:"groups"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg, err = Parse(filepath.Ext(path), b)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Parse decodes raw bytes in the format named by ext (".yaml", ".json", ...).
func Parse(ext string, b []byte) (Config, error) {
	var cfg Config
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
