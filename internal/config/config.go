// Package config provides configuration management for the homologation
// services.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"homologation/pkg/database"
)

// Configuration validation errors.
var (
	ErrMissingAddr           = errors.New("server.addr is required")
	ErrMissingDBPath         = errors.New("database.path is required")
	ErrMissingJWTSecret      = errors.New("auth.jwt_secret is required")
	ErrMissingJWTIssuer      = errors.New("auth.jwt_issuer is required")
	ErrInvalidJWTTTL         = errors.New("auth.jwt_ttl_hours must be at least 1")
	ErrInvalidTrialLimit     = errors.New("auth.trial_download_limit must be non-negative")
	ErrInvalidTimeout        = errors.New("scraper.timeout_sec must be at least 1")
	ErrInvalidMaxConcurrent  = errors.New("scraper.max_concurrent must be between 1 and 3")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidEnvironmentVar = errors.New("invalid environment override")
)

// Environment overrides, applied after the file.
const (
	EnvDBPath      = "HOMOLOG_DB_PATH"
	EnvJWTSecret   = "HOMOLOG_JWT_SECRET"
	EnvJWTIssuer   = "HOMOLOG_JWT_ISSUER"
	EnvJWTTTLHours = "HOMOLOG_JWT_TTL_HOURS"
	EnvHTTPAddr    = "HOMOLOG_HTTP_ADDR"
	EnvLogLevel    = "HOMOLOG_LOG_LEVEL"
)

const devSecret = "dev-secret-change-me"

// Config represents the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds the token settings and the trial-account quota.
type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	JWTIssuer          string `yaml:"jwt_issuer"`
	JWTTTLHours        int    `yaml:"jwt_ttl_hours"`
	TrialDownloadLimit int    `yaml:"trial_download_limit"`
}

// JWTDuration returns the token lifetime.
func (a AuthConfig) JWTDuration() time.Duration {
	return time.Duration(a.JWTTTLHours) * time.Hour
}

type ScraperConfig struct {
	TimeoutSec    int    `yaml:"timeout_sec"`
	UserAgent     string `yaml:"user_agent"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// Timeout returns the per-page fetch timeout.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{Path: database.DefaultConfig().Path},
		Auth: AuthConfig{
			JWTSecret:          devSecret,
			JWTIssuer:          "homologation",
			JWTTTLHours:        24,
			TrialDownloadLimit: 20,
		},
		Scraper: ScraperConfig{
			TimeoutSec:    20,
			MaxConcurrent: 3,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvDBPath, &c.Database.Path)
	str(EnvJWTSecret, &c.Auth.JWTSecret)
	str(EnvJWTIssuer, &c.Auth.JWTIssuer)
	str(EnvHTTPAddr, &c.Server.Addr)
	str(EnvLogLevel, &c.Logging.Level)

	if v, ok := lookup(EnvJWTTTLHours); ok && strings.TrimSpace(v) != "" {
		hours, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnvironmentVar, EnvJWTTTLHours, v)
		}
		c.Auth.JWTTTLHours = hours
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrMissingAddr
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return ErrMissingDBPath
	}

	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.JWTIssuer == "" {
		return ErrMissingJWTIssuer
	}
	if c.Auth.JWTTTLHours < 1 {
		return ErrInvalidJWTTTL
	}
	if c.Auth.TrialDownloadLimit < 0 {
		return ErrInvalidTrialLimit
	}

	if c.Scraper.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.Scraper.MaxConcurrent < 1 || c.Scraper.MaxConcurrent > 3 {
		return ErrInvalidMaxConcurrent
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}
	return nil
}

// UsesDevSecret reports whether the built-in development secret is active.
func (c *Config) UsesDevSecret() bool { return c.Auth.JWTSecret == devSecret }

// String returns a string representation of the config without secrets.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, DB: %s, Issuer: %s, TTL: %dh, Log: %s}",
		c.Server.Addr,
		c.Database.Path,
		c.Auth.JWTIssuer,
		c.Auth.JWTTTLHours,
		c.Logging.Level,
	)
}
