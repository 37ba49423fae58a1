package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	ContentMinLen int           `mapstructure:"content_min_len" yaml:"content_min_len"`
	ContentMaxLen int           `mapstructure:"content_max_len" yaml:"content_max_len"`
	RateLimit     time.Duration `mapstructure:"rate_limit" yaml:"rate_limit"`
	NextWaitFor   time.Duration `mapstructure:"next_wait_for" yaml:"next_wait_for"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              "0.0.0.0:50051",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "chatplane.db",
		ContentMinLen:     2,
		ContentMaxLen:     300,
		RateLimit:         time.Second,
		NextWaitFor:       200 * time.Millisecond,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.ContentMinLen != 0 {
		c.ContentMinLen = other.ContentMinLen
	}
	if other.ContentMaxLen != 0 {
		c.ContentMaxLen = other.ContentMaxLen
	}
	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}
	if other.NextWaitFor != 0 {
		c.NextWaitFor = other.NextWaitFor
	}
}
