// Package config provides configuration management for dew servers using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML, JSON, and .env files, environment
// variable overrides with the DEW_ prefix, and per-server settings for
// sessions, rate limiting, CORS, and the security heuristics.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Security  SecurityConfig  `yaml:"security" mapstructure:"security"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	TemplateDir string `yaml:"template_dir" mapstructure:"template_dir"`
	FastReload  bool   `yaml:"fast_reload" mapstructure:"fast_reload"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name" mapstructure:"cookie_name"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Secret     string `yaml:"secret" mapstructure:"secret"`
	Secure     bool   `yaml:"secure" mapstructure:"secure"`
	HTTPOnly   bool   `yaml:"http_only" mapstructure:"http_only"`
	SameSite   string `yaml:"same_site" mapstructure:"same_site"`
}

type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled" mapstructure:"enabled"`
	MaxRequests   int  `yaml:"max_requests" mapstructure:"max_requests"`
	WindowSeconds int  `yaml:"window_seconds" mapstructure:"window_seconds"`
}

type SecurityConfig struct {
	SQLInjectionCheck bool `yaml:"sql_injection_check" mapstructure:"sql_injection_check"`
}

// CORSConfig controls the preflight response. The allowed origin is not
// configurable: every response carries a wildcard origin.
type CORSConfig struct {
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the configuration a bare server starts with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			TemplateDir: "templates",
		},
		Session: SessionConfig{
			CookieName: "dew_session",
			MaxAge:     3600,
			HTTPOnly:   true,
			SameSite:   "Lax",
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   60,
			WindowSeconds: 60,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from whatever viper has read (config file, DEW_ env
// vars, bound flags), on top of the defaults.
func Load() (*Config, error) {
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper's Unmarshal misses keys set only through Set/env for some
	// nested types, so pick up the common ones explicitly.
	if viper.IsSet("server.port") {
		config.Server.Port = viper.GetInt("server.port")
	}
	if viper.IsSet("server.host") {
		config.Server.Host = viper.GetString("server.host")
	}
	if viper.IsSet("server.fast_reload") {
		config.Server.FastReload = viper.GetBool("server.fast_reload")
	}
	if viper.IsSet("rate_limit.enabled") {
		config.RateLimit.Enabled = viper.GetBool("rate_limit.enabled")
	}
	if viper.IsSet("security.sql_injection_check") {
		config.Security.SQLInjectionCheck = viper.GetBool("security.sql_injection_check")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Session.MaxAge < 0 {
		return fmt.Errorf("session max_age must not be negative")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxRequests <= 0 {
			return fmt.Errorf("rate_limit.max_requests must be positive")
		}
		if c.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate_limit.window_seconds must be positive")
		}
	}
	switch strings.ToLower(c.Session.SameSite) {
	case "", "lax", "strict", "none":
	default:
		return fmt.Errorf("invalid session same_site %q", c.Session.SameSite)
	}
	return nil
}

// Addr returns the host:port the listener binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadFile reads a standalone settings file (.env, YAML, or JSON, chosen by
// extension) and returns its flattened key/value pairs. This backs the
// host-facing config loading operation and does not touch the global viper
// state.
func LoadFile(path string) (map[string]string, error) {
	v := viper.New()
	v.SetConfigFile(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".env":
		v.SetConfigType("env")
	case ".yml", ".yaml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	out := map[string]string{}
	for _, key := range v.AllKeys() {
		out[key] = v.GetString(key)
	}
	return out, nil
}
