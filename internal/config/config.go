// Package config loads tools.yaml for the build utilities.
//
// Values are layered: embedded defaults, then the optional file, then
// environment variables (including a .env file in the working directory).
// Command-line flags are applied last by each tool.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	buildutils "github.com/silver2dream/build-utils"
	toolerrors "github.com/silver2dream/build-utils/internal/errors"
)

// Environment variables recognized by Load.
const (
	EnvConfigPath       = "BUILD_UTILS_CONFIG"
	EnvSnippetCommand   = "SNIPPETFMT_COMMAND"
	EnvSnippetTimeout   = "SNIPPETFMT_TIMEOUT"
	EnvSnippetCacheSize = "SNIPPETFMT_CACHE_SIZE"
	EnvIconFontOutput   = "ICONFONT_OUTPUT"
	EnvIconFontFormat   = "ICONFONT_FORMAT"
	EnvArchiveGlob      = "ARCHIVE_GLOB"
)

// Config represents tools.yaml
type Config struct {
	Archive    ArchiveConfig    `yaml:"archive"`
	IconFont   IconFontConfig   `yaml:"iconfont"`
	SnippetFmt SnippetFmtConfig `yaml:"snippetfmt"`
}

// ArchiveConfig holds archive-files settings
type ArchiveConfig struct {
	Exclude []string `yaml:"exclude"`
	Glob    bool     `yaml:"glob"`
}

// IconFontConfig holds gen-iconfont settings
type IconFontConfig struct {
	Output string `yaml:"output"`
	Format string `yaml:"format"` // woff2, woff, ttf
}

// SnippetFmtConfig holds check-snippets settings
type SnippetFmtConfig struct {
	Command   string `yaml:"command"`
	Timeout   string `yaml:"timeout"` // Go duration, e.g. "30s"
	CacheSize int    `yaml:"cache_size"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field    string
	Message  string
	Expected string
}

func (e ValidationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s (expected: %s)", e.Field, e.Message, e.Expected)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validFontFormats = []string{"woff2", "woff", "ttf"}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buildutils.DefaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load builds the effective configuration. path may be empty, in which case
// BUILD_UTILS_CONFIG is consulted; with neither, only defaults and
// environment apply. The result is validated.
func Load(path string) (*Config, error) {
	// A missing .env is the common case; parse errors are not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, toolerrors.NewConfigErrorWithCause("failed to load .env", err)
	}

	cfg, err := Default()
	if err != nil {
		return nil, toolerrors.NewConfigErrorWithCause("invalid defaults", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, toolerrors.NewConfigErrorWithCause("failed to read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, toolerrors.NewConfigErrorWithCause("failed to parse config file", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, toolerrors.NewConfigError("invalid configuration: " + strings.Join(msgs, "; "))
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSnippetCommand); ok && v != "" {
		c.SnippetFmt.Command = v
	}
	if v, ok := lookup(EnvSnippetTimeout); ok && v != "" {
		c.SnippetFmt.Timeout = v
	}
	if v, ok := lookup(EnvSnippetCacheSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return toolerrors.NewConfigErrorWithCause(EnvSnippetCacheSize+" must be an integer", err)
		}
		c.SnippetFmt.CacheSize = n
	}
	if v, ok := lookup(EnvIconFontOutput); ok && v != "" {
		c.IconFont.Output = v
	}
	if v, ok := lookup(EnvIconFontFormat); ok && v != "" {
		c.IconFont.Format = v
	}
	if v, ok := lookup(EnvArchiveGlob); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return toolerrors.NewConfigErrorWithCause(EnvArchiveGlob+" must be a boolean", err)
		}
		c.Archive.Glob = b
	}
	return nil
}

// Validate checks field values and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if !contains(validFontFormats, c.IconFont.Format) {
		errors = append(errors, ValidationError{
			Field:    "iconfont.format",
			Message:  fmt.Sprintf("invalid value: %s", c.IconFont.Format),
			Expected: strings.Join(validFontFormats, ", "),
		})
	}

	if strings.TrimSpace(c.SnippetFmt.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "snippetfmt.command",
			Message: "required field is missing",
		})
	}

	if c.SnippetFmt.Timeout != "" {
		if d, err := time.ParseDuration(c.SnippetFmt.Timeout); err != nil || d < 0 {
			errors = append(errors, ValidationError{
				Field:    "snippetfmt.timeout",
				Message:  fmt.Sprintf("invalid value: %s", c.SnippetFmt.Timeout),
				Expected: "non-negative duration such as 30s",
			})
		}
	}

	if c.SnippetFmt.CacheSize < 0 {
		errors = append(errors, ValidationError{
			Field:    "snippetfmt.cache_size",
			Message:  fmt.Sprintf("invalid value: %d", c.SnippetFmt.CacheSize),
			Expected: "0 (disabled) or a positive size",
		})
	}

	for i, pattern := range c.Archive.Exclude {
		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("archive.exclude[%d]", i),
				Message: "empty pattern",
			})
		}
	}

	return errors
}

// SnippetTimeout returns the parsed formatter timeout; zero means none.
func (c *Config) SnippetTimeout() time.Duration {
	d, err := time.ParseDuration(c.SnippetFmt.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
