// Package config provides Viper-based configuration loading for the match
// server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WebSocketConfig holds the client-facing WebSocket listener settings.
type WebSocketConfig struct {
	// Host is the bind address for the WebSocket listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the WebSocket listener.
	Port int `mapstructure:"port"`
	// ReadBufferSize and WriteBufferSize are the per-connection buffer sizes
	// handed to the upgrader.
	ReadBufferSize  int `mapstructure:"read_buffer_size"`
	WriteBufferSize int `mapstructure:"write_buffer_size"`
	// SendQueueSize is the per-connection outbound frame queue length.
	SendQueueSize int `mapstructure:"send_queue_size"`
	// PingInterval is how often the server pings an idle connection. The read
	// deadline is derived from it and must leave headroom for the pong.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	// WriteTimeout is the per-frame write deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxMessageBytes caps inbound frame size.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes"`
}

// Addr returns the "host:port" listen address.
func (w WebSocketConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// StatusConfig holds the read-only HTTP status listener settings.
type StatusConfig struct {
	// Host is the bind address for the status listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the status listener.
	Port int `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (s StatusConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MatchConfig holds match registry settings.
type MatchConfig struct {
	// CodeRetryCap bounds the code-collision retry loop in the store.
	CodeRetryCap int `mapstructure:"code_retry_cap"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Status    StatusConfig    `mapstructure:"status"`
	Match     MatchConfig     `mapstructure:"match"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateWebSocket(c.WebSocket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStatus(c.Status); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWebSocket(w WebSocketConfig) error {
	var errs []string
	if w.Port < 1 || w.Port > 65535 {
		errs = append(errs, fmt.Sprintf("websocket.port must be 1-65535, got %d", w.Port))
	}
	if w.ReadBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.read_buffer_size must be >= 1, got %d", w.ReadBufferSize))
	}
	if w.WriteBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.write_buffer_size must be >= 1, got %d", w.WriteBufferSize))
	}
	if w.SendQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.send_queue_size must be >= 1, got %d", w.SendQueueSize))
	}
	if w.PingInterval <= 0 {
		errs = append(errs, "websocket.ping_interval must be positive")
	}
	if w.WriteTimeout <= 0 {
		errs = append(errs, "websocket.write_timeout must be positive")
	}
	if w.MaxMessageBytes < 1 {
		errs = append(errs, fmt.Sprintf("websocket.max_message_bytes must be >= 1, got %d", w.MaxMessageBytes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStatus(s StatusConfig) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("status.port must be 1-65535, got %d", s.Port)
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	if m.CodeRetryCap < 1 {
		return fmt.Errorf("match.code_retry_cap must be >= 1, got %d", m.CodeRetryCap)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MATCHSERVER_ prefix
	v.SetEnvPrefix("MATCHSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("websocket.host", "0.0.0.0")
	v.SetDefault("websocket.port", 3001)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.send_queue_size", 64)
	v.SetDefault("websocket.ping_interval", "54s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.max_message_bytes", 65536)

	v.SetDefault("status.host", "0.0.0.0")
	v.SetDefault("status.port", 8081)

	v.SetDefault("match.code_retry_cap", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
