// Package models defines data structures for configuration, links, and reports.
package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the immutable runtime configuration for audit and rewrite passes.
// It is built once at startup and passed explicitly to every component.
type Config struct {
	Extensions       []string      `yaml:"extensions"`
	Exclude          []string      `yaml:"exclude,omitempty"`
	SecondaryRoot    string        `yaml:"secondary_root"`
	MaxAncestorDepth int           `yaml:"max_ancestor_depth"`
	FileBaseToken    string        `yaml:"file_base_token"`
	Timeout          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	WorkerCount      int           `yaml:"workers"`
	CacheSize        int           `yaml:"cache_size"`
	CheckImages      bool          `yaml:"check_images"`
	LegacyExt        string        `yaml:"legacy_ext"`
	TargetExt        string        `yaml:"target_ext"`
	HistoryDB        string        `yaml:"history_db,omitempty"`
}

const (
	DefaultSecondaryRoot = "web_resources"
	DefaultFileBaseToken = "$IMS-CC-FILEBASE$"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Extensions:       []string{".html", ".htm"},
		SecondaryRoot:    DefaultSecondaryRoot,
		MaxAncestorDepth: 10,
		FileBaseToken:    DefaultFileBaseToken,
		Timeout:          5 * time.Second,
		UserAgent:        DefaultUserAgent,
		WorkerCount:      8,
		CacheSize:        1024,
		LegacyExt:        "pptx",
		TargetExt:        "html",
	}
}

// LoadConfig reads a YAML config file on top of the defaults, then applies
// LWP_LINKS_* environment overrides (a .env file in the working directory is
// loaded first if present). An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LWP_LINKS_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("LWP_LINKS_SECONDARY_ROOT"); v != "" {
		c.SecondaryRoot = v
	}
	if v := os.Getenv("LWP_LINKS_HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}
	if v := os.Getenv("LWP_LINKS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LWP_LINKS_WORKERS: %w", err)
		}
		c.WorkerCount = n
	}
	if v := os.Getenv("LWP_LINKS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LWP_LINKS_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate reports configuration values that would make a pass meaningless.
func (c Config) Validate() error {
	var errs []error
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("at least one document extension is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.WorkerCount))
	}
	if c.MaxAncestorDepth < 0 {
		errs = append(errs, fmt.Errorf("max_ancestor_depth must not be negative, got %d", c.MaxAncestorDepth))
	}
	if strings.TrimSpace(c.LegacyExt) == "" || strings.TrimSpace(c.TargetExt) == "" {
		errs = append(errs, errors.New("legacy_ext and target_ext are required"))
	}
	if strings.EqualFold(c.LegacyExt, c.TargetExt) {
		errs = append(errs, errors.New("legacy_ext and target_ext must differ"))
	}
	return errors.Join(errs...)
}
