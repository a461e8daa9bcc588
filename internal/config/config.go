// Package config loads the server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Database describes the Postgres connection. URL, when set, wins over the
// individual fields.
type Database struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host" validate:"required_without=URL"`
	Port     int    `yaml:"port" validate:"gte=1,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_without=URL"`
	SSLMode  string `yaml:"sslMode" validate:"oneof=disable require verify-ca verify-full"`
}

// Config is the server configuration.
type Config struct {
	Addr        string   `yaml:"addr" validate:"required"`
	Store       string   `yaml:"store" validate:"oneof=postgres memory"`
	Database    Database `yaml:"database"`
	Seed        int64    `yaml:"seed"`
	LogLevel    string   `yaml:"logLevel"`
	LogFormat   string   `yaml:"logFormat" validate:"oneof=text json"`
	Catalog     string   `yaml:"catalog"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Addr:  ":8080",
		Store: "postgres",
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "1234",
			Name:     "LeagueSimulator",
			SSLMode:  "disable",
		},
		LogLevel:    "info",
		LogFormat:   "text",
		CORSOrigins: []string{"*"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		switch ext := filepath.Ext(path); ext {
		case ".yaml", ".yml", ".json":
			if err := yaml.Unmarshal(raw, c); err != nil {
				return nil, fmt.Errorf("decoding config %s: %v: %w", path, err, ErrInvalid)
			}
		default:
			return nil, fmt.Errorf("unsupported config format %q: %w", ext, ErrInvalid)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("WCSIM_DATABASE_URL"); ok {
		c.Database.URL = v
	}
	if v, ok := os.LookupEnv("WCSIM_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("WCSIM_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WCSIM_SEED=%q: %w", v, ErrInvalid)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv("WCSIM_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("WCSIM_CATALOG"); ok {
		c.Catalog = v
	}
	if v, ok := os.LookupEnv("WCSIM_STORE"); ok {
		c.Store = v
	}
	return nil
}

// Validate checks field constraints, the listen address and the log level.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	_, p, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("addr %q: %v: %w", c.Addr, err, ErrInvalid)
	}
	if n, err := strconv.Atoi(p); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("addr %q: bad port: %w", c.Addr, ErrInvalid)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("logLevel %q: %w", c.LogLevel, ErrInvalid)
	}
	return nil
}

// ConnString returns the Postgres connection string.
func (c *Config) ConnString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	d := c.Database
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// NewLogger builds the root logger. Validate must have passed.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
