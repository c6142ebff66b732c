/*
Package config loads the server configuration from TOML.

PURPOSE:
  One file configures the HTTP server, the database and the solver
  deadline. Every field has a default, so an empty or missing file yields
  a working configuration. Command-line flags override the loaded values.

EXAMPLE FILE:
  [server]
  port = 8080
  host = "0.0.0.0"
  read_timeout = "15s"

  [server.cors]
  allowed_origins = ["http://localhost:5173"]

  [database]
  path = "./data/tvm.db"

  [solver]
  timeout = "2s"
  max_iter = 100

  [log]
  level = "info"
  format = "json"

SEE ALSO:
  - cmd/server/main.go: Loads the file and applies flag overrides
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Solver   SolverConfig   `toml:"solver"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int        `toml:"port"`
	Host         string     `toml:"host"`
	ReadTimeout  Duration   `toml:"read_timeout"`
	WriteTimeout Duration   `toml:"write_timeout"`
	IdleTimeout  Duration   `toml:"idle_timeout"`
	CORS         CORSConfig `toml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Path is the SQLite file; ":memory:" keeps everything in memory.
	Path string `toml:"path"`
}

// SolverConfig bounds the iterative solvers (rate, irr) served over HTTP.
type SolverConfig struct {
	Timeout Duration `toml:"timeout"`
	MaxIter int      `toml:"max_iter"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Duration wraps time.Duration for TOML parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file and applies defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return finish(&cfg)
}

// Parse decodes configuration from TOML text.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	cfg.Database.Path = os.ExpandEnv(cfg.Database.Path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 15 * time.Second
	}
	if c.Server.IdleTimeout.Duration == 0 {
		c.Server.IdleTimeout.Duration = 60 * time.Second
	}
	if len(c.Server.CORS.AllowedOrigins) == 0 {
		c.Server.CORS.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	// Database
	if c.Database.Path == "" {
		c.Database.Path = "tvm.db"
	}

	// Solver
	if c.Solver.Timeout.Duration == 0 {
		c.Solver.Timeout.Duration = 2 * time.Second
	}
	if c.Solver.MaxIter == 0 {
		c.Solver.MaxIter = 100
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Solver.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("solver.timeout must not be negative"))
	}
	if c.Solver.MaxIter < 0 {
		errs = append(errs, fmt.Errorf("solver.max_iter must not be negative"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// NewLogger builds a logrus logger from the log settings.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
