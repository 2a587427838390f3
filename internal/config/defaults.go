package config

import (
	"math"
	"time"
)

const (
	DefaultAddr            = "127.0.0.1:5601"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
	DefaultStorageDriver   = "activitywatch"
	DefaultAWServerURL     = "http://localhost:5600"
	DefaultStorageTimeout  = 5 * time.Second
)

// Defaults returns a Config with every field populated.
func Defaults() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if !(c.ShutdownTimeout > 0) || c.ShutdownTimeout >= MaxSeconds {
		c.ShutdownTimeout = DefaultShutdownTimeout.Seconds()
	}
	// Bookmarklets post from arbitrary pages, so CORS is on unless disabled.
	if c.CORS.Enabled == nil {
		on := true
		c.CORS.Enabled = &on
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type"}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Driver == "activitywatch" && c.Storage.URL == "" {
		c.Storage.URL = DefaultAWServerURL
	}
	if !(c.Storage.Timeout > 0) || c.Storage.Timeout >= MaxSeconds {
		c.Storage.Timeout = DefaultStorageTimeout.Seconds()
	}
}

// CORSEnabled reports the effective CORS switch.
func (c Config) CORSEnabled() bool { return c.CORS.Enabled == nil || *c.CORS.Enabled }

// MaxSeconds is the largest seconds value a time.Duration can hold.
const MaxSeconds = float64(math.MaxInt64) / float64(time.Second)

// Seconds converts a float seconds field into a Duration. NaN and
// non-positive values give 0; values past MaxSeconds saturate.
func Seconds(s float64) time.Duration {
	switch {
	case !(s > 0):
		return 0
	case s >= MaxSeconds:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s * float64(time.Second))
}
