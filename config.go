// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// A LogLevel controls how verbose a Context's logger is.
type LogLevel string

const (
	// LogNone logs only fatal conditions.
	LogNone LogLevel = "none"
	// LogDebug logs request lifecycle milestones.
	LogDebug LogLevel = "debug"
	// LogVerbose additionally logs every state machine step.
	LogVerbose LogLevel = "verbose"
)

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogDebug:
		return zerolog.DebugLevel
	case LogVerbose:
		return zerolog.TraceLevel
	default:
		return zerolog.FatalLevel
	}
}

// DefaultMaxRedirects is the default limit on redirects followed by a
// single request.
const DefaultMaxRedirects = 20

// NoRedirects is the MaxRedirects value that fails every request on its
// first redirect response.
const NoRedirects = -1

// DefaultReadBufferSize is the default size of the buffer each request
// reads its response body into.
const DefaultReadBufferSize = 32 * 1024

// Config contains the process-wide settings of a Context. Build it once
// at startup, directly or with LoadConfig, and pass it to NewContext.
type Config struct {
	// UserAgent is sent with every request that does not set its own
	// User-Agent header.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// LogLevel is one of "none", "debug" or "verbose".
	LogLevel LogLevel `yaml:"log_level" mapstructure:"log_level"`
	// LogTag is attached to every log line as the component name.
	LogTag string `yaml:"log_tag" mapstructure:"log_tag"`
	// LogFormat is "json" or "console".
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`
	// EnableHTTP2 turns on HTTP/2 in the default adapter factory.
	EnableHTTP2 bool `yaml:"enable_http2" mapstructure:"enable_http2"`
	// MaxRedirects limits the redirects a single request follows. Zero
	// means DefaultMaxRedirects; use NoRedirects to follow none.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects"`
	// ReadBufferSize is the largest chunk written to a sink at once.
	ReadBufferSize int `yaml:"read_buffer_size" mapstructure:"read_buffer_size"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = LogNone
	}
	if c.LogTag == "" {
		c.LogTag = "urlrequest"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogNone, LogDebug, LogVerbose:
	default:
		return fmt.Errorf("urlrequest: log_level must be one of none, debug, verbose (got: %s)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("urlrequest: log_format must be json or console (got: %s)", c.LogFormat)
	}
	if c.MaxRedirects < NoRedirects {
		return fmt.Errorf("urlrequest: max_redirects must be at least %d (got: %d)", NoRedirects, c.MaxRedirects)
	}
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("urlrequest: read_buffer_size must not be negative (got: %d)", c.ReadBufferSize)
	}
	return nil
}

// newLogger builds the Context logger writing to w.
func (c *Config) newLogger(w io.Writer) zerolog.Logger {
	if strings.ToLower(c.LogFormat) == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).
		Level(c.LogLevel.zerolog()).
		With().
		Timestamp().
		Str("component", c.LogTag).
		Logger()
}

// EnvPrefix is the prefix of environment variables that override values
// loaded by LoadConfig, for example URLREQUEST_USER_AGENT.
const EnvPrefix = "URLREQUEST"

// LoadConfig reads a Config from the file at path (any format viper
// understands, such as YAML or JSON) and applies environment overrides.
// An empty path loads from the environment and defaults only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("user_agent", "")
	v.SetDefault("log_level", string(LogNone))
	v.SetDefault("log_tag", "urlrequest")
	v.SetDefault("log_format", "json")
	v.SetDefault("enable_http2", false)
	v.SetDefault("max_redirects", DefaultMaxRedirects)
	v.SetDefault("read_buffer_size", DefaultReadBufferSize)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("urlrequest: config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("urlrequest: reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("urlrequest: decoding config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
