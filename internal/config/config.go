package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/harrison/repoquill/internal/ignore"
	"github.com/harrison/repoquill/internal/models"
)

// MaxWorkers caps the worker pool size
const MaxWorkers = 32

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every successful scan
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents repoquill configuration options
type Config struct {
	// Include lists glob patterns of files whose content is included
	Include []string `yaml:"include"`

	// Exclude lists glob patterns of files dropped entirely
	Exclude []string `yaml:"exclude"`

	// TreeOnly lists glob patterns of files listed without content
	TreeOnly []string `yaml:"tree_only"`

	// HonorIgnore applies ignore files found under the root (default true)
	HonorIgnore *bool `yaml:"honor_ignore"`

	// IgnoreFiles names the ignore files to read
	IgnoreFiles []string `yaml:"ignore_files"`

	// StripComments removes comments from loaded files
	StripComments bool `yaml:"strip_comments"`

	// NormalizeWhitespace normalizes line endings and blank lines
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`

	// Format selects the artifact format (text, json, markdown, html)
	Format string `yaml:"format"`

	// Output is the artifact path, "-" for stdout
	Output string `yaml:"output"`

	// Workers bounds parallel classification and loading
	Workers int `yaml:"workers"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	honor := true
	return &Config{
		HonorIgnore: &honor,
		IgnoreFiles: []string{ignore.DefaultFileName},
		Format:      models.FormatText,
		Output:      "-",
		Workers:     4,
		LogLevel:    "info",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".repoquill/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If path is empty or the file doesn't exist, returns default configuration
// without error. If the file exists but is malformed, returns an error.
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := mergo.Merge(&cfg, *DefaultConfig(), mergo.WithoutDereference); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFromDir loads configuration from .repoquill.yaml in the specified
// directory. If the file doesn't exist, returns default configuration.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, FileName))
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Output, &c.History.DBPath} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// FlagOverrides carries CLI flag values. Nil pointers and nil slices mean the
// flag was not given.
type FlagOverrides struct {
	Include             []string
	Exclude             []string
	TreeOnly            []string
	HonorIgnore         *bool
	StripComments       *bool
	NormalizeWhitespace *bool
	Format              *string
	Output              *string
	Workers             *int
	LogLevel            *string
	HistoryEnabled      *bool
}

// MergeWithFlags merges CLI flags into the configuration.
// Given flags override configuration values; pattern flags replace the
// configured lists.
func (c *Config) MergeWithFlags(f FlagOverrides) error {
	if f.Include != nil {
		c.Include = f.Include
	}
	if f.Exclude != nil {
		c.Exclude = f.Exclude
	}
	if f.TreeOnly != nil {
		c.TreeOnly = f.TreeOnly
	}
	if f.HonorIgnore != nil {
		honor := *f.HonorIgnore
		c.HonorIgnore = &honor
	}
	if f.StripComments != nil {
		c.StripComments = *f.StripComments
	}
	if f.NormalizeWhitespace != nil {
		c.NormalizeWhitespace = *f.NormalizeWhitespace
	}
	if f.Format != nil {
		c.Format = *f.Format
	}
	if f.Output != nil {
		c.Output = *f.Output
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.HistoryEnabled != nil {
		c.History.Enabled = *f.HistoryEnabled
	}
	return c.expandPaths()
}

var (
	validFormats = []string{models.FormatText, models.FormatJSON, models.FormatMarkdown, models.FormatHTML}
	validLevels  = []string{"trace", "debug", "info", "warn", "error"}
)

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("invalid format %q, must be one of: %s", c.Format, strings.Join(validFormats, ", "))
	}

	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q, must be one of: %s", c.LogLevel, strings.Join(validLevels, ", "))
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, c.Workers)
	}

	for name, list := range map[string][]string{"include": c.Include, "exclude": c.Exclude, "tree_only": c.TreeOnly} {
		for _, p := range list {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%s patterns cannot be empty", name)
			}
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// HonorsIgnore reports whether ignore files are applied
func (c *Config) HonorsIgnore() bool {
	return c.HonorIgnore == nil || *c.HonorIgnore
}

// ScanConfig builds the immutable configuration of one run over root
func (c *Config) ScanConfig(root string) models.ScanConfig {
	return models.ScanConfig{
		RootPath: root,
		Patterns: models.Patterns{
			Include:  slices.Clone(c.Include),
			Exclude:  slices.Clone(c.Exclude),
			TreeOnly: slices.Clone(c.TreeOnly),
		},
		HonorIgnore:         c.HonorsIgnore(),
		IgnoreFileNames:     slices.Clone(c.IgnoreFiles),
		StripComments:       c.StripComments,
		NormalizeWhitespace: c.NormalizeWhitespace,
		Format:              strings.ToLower(c.Format),
	}
}
