package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/wrapped/internal/analytics"
)

// Config represents ~/.wrapped/config.toml.
type Config struct {
	// TargetYear is the calendar year analyzed; 0 means the current year.
	TargetYear  int      `toml:"target_year"`
	LogLevel    string   `toml:"log_level"`
	MetricsAddr string   `toml:"metrics_addr"`
	MaxUploadMB int      `toml:"max_upload_mb"`
	Analysis    Analysis `toml:"analysis"`
}

// Analysis holds the ranking sizes and heuristics of the aggregation engine.
type Analysis struct {
	ReplyWindowSeconds int      `toml:"reply_window_seconds"`
	TopStreaks         int      `toml:"top_streaks"`
	TopGaps            int      `toml:"top_gaps"`
	TopWords           int      `toml:"top_words"`
	LongestMessages    int      `toml:"longest_messages"`
	ExcludedAuthors    []string `toml:"excluded_authors"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := analytics.DefaultOptions()
	return &Config{
		LogLevel:    "info",
		MaxUploadMB: 64,
		Analysis: Analysis{
			ReplyWindowSeconds: int(opts.ReplyWindow / time.Second),
			TopStreaks:         opts.TopStreaks,
			TopGaps:            opts.TopGaps,
			TopWords:           opts.TopWords,
			LongestMessages:    opts.LongestMessages,
			ExcludedAuthors:    opts.ExcludedAuthors,
		},
	}
}

// Load reads config from the given path on top of Default. Returns nil and
// error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Year resolves TargetYear against now.
func (c *Config) Year(now time.Time) int {
	if c.TargetYear > 0 {
		return c.TargetYear
	}
	return now.Year()
}

// Options converts the [analysis] table to engine options. Non-positive
// values fall back to the engine defaults.
func (c *Config) Options() analytics.Options {
	opts := analytics.DefaultOptions()
	a := c.Analysis
	if a.ReplyWindowSeconds > 0 {
		opts.ReplyWindow = time.Duration(a.ReplyWindowSeconds) * time.Second
	}
	if a.TopStreaks > 0 {
		opts.TopStreaks = a.TopStreaks
	}
	if a.TopGaps > 0 {
		opts.TopGaps = a.TopGaps
	}
	if a.TopWords > 0 {
		opts.TopWords = a.TopWords
	}
	if a.LongestMessages > 0 {
		opts.LongestMessages = a.LongestMessages
	}
	if a.ExcludedAuthors != nil {
		opts.ExcludedAuthors = a.ExcludedAuthors
	}
	return opts
}

// MaxUploadBytes is the largest export the daemon accepts in one request.
func (c *Config) MaxUploadBytes() int {
	if c.MaxUploadMB <= 0 {
		return Default().MaxUploadMB << 20
	}
	return c.MaxUploadMB << 20
}
