// Package config loads inkdoc server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Storage  StorageConfig  `toml:"storage" yaml:"storage"`
	Document DocumentConfig `toml:"document" yaml:"document"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `toml:"path" yaml:"path"`
}

// DocumentConfig applies to documents created by the server.
type DocumentConfig struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// HistoryLimit caps undo/redo depth per author. 0 is unbounded.
	HistoryLimit int `toml:"history_limit" yaml:"history_limit"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Storage:  StorageConfig{Path: filepath.Join("data", "inkdoc.db")},
		Document: DocumentConfig{Width: 1000, Height: 1500},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, picking the decoder by extension, then
// applies environment overrides and validates. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

// ApplyEnvOverrides applies INKDOC_* environment variables.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("INKDOC_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INKDOC_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("INKDOC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("INKDOC_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("INKDOC_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INKDOC_HISTORY_LIMIT: %w", err)
		}
		c.Document.HistoryLimit = n
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Document.Width <= 0 || c.Document.Height <= 0 {
		errs = append(errs, fmt.Errorf("document size %dx%d must be positive", c.Document.Width, c.Document.Height))
	}
	if c.Document.HistoryLimit < 0 {
		errs = append(errs, errors.New("document.history_limit must not be negative"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}
