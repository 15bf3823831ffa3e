package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/geometry"
	"github.com/alnah/go-pagepdf/internal/rules"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength  = 4096 // PATH_MAX on Linux
	MaxURLLength   = 2048 // Redis URLs with credentials
	MaxTabsLimit   = 32   // Chrome degrades well before this
	MaxNetworkIdle = 60 * time.Second
)

// Defaults applied by DefaultConfig.
const (
	DefaultNetworkIdle = 500 * time.Millisecond
	DefaultCacheTTL    = 24 * time.Hour
	DefaultLogLevel    = "info"
)

// Config holds the settings of the pagepdf command and exporter.
type Config struct {
	Export ExportConfig `yaml:"export" toml:"export"`
	Render RenderConfig `yaml:"render" toml:"render"`
	Cache  CacheConfig  `yaml:"cache" toml:"cache"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// ExportConfig holds the per-document export settings.
type ExportConfig struct {
	Target        string              `yaml:"target" toml:"target"` // DIGITAL or HARDCOPY (empty = document's own)
	Margins       geometry.Margins    `yaml:"margins" toml:"margins"`
	PrintPreset   rules.PrintPreset   `yaml:"printPreset" toml:"printPreset"`
	DigitalPreset rules.DigitalPreset `yaml:"digitalPreset" toml:"digitalPreset"`
}

// RenderConfig defines browser and printing options.
type RenderConfig struct {
	BrowserBin       string `yaml:"browserBin" toml:"browserBin"`             // Empty = ROD_BROWSER_BIN or auto-detect
	ServerlessChrome string `yaml:"serverlessChrome" toml:"serverlessChrome"` // Empty = PAGEPDF_SERVERLESS_CHROME or /opt/chromium
	MaxTabs          int    `yaml:"maxTabs" toml:"maxTabs"`                   // 0 = derived from GOMAXPROCS
	NetworkIdle      string `yaml:"networkIdle" toml:"networkIdle"`           // Go duration, e.g. "500ms"
}

// CacheConfig defines where rendered PDFs are cached.
type CacheConfig struct {
	Location string `yaml:"location" toml:"location"` // "" or "off", a directory, or redis:// URL
	TTL      string `yaml:"ttl" toml:"ttl"`           // Go duration, "0" = no expiry
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json, logfmt
}

// DefaultConfig returns the documented export defaults with caching off.
func DefaultConfig() *Config {
	s := rules.DefaultSettings()
	return &Config{
		Export: ExportConfig{
			Margins:       s.Margins,
			PrintPreset:   s.PrintPreset,
			DigitalPreset: s.DigitalPreset,
		},
		Render: RenderConfig{NetworkIdle: DefaultNetworkIdle.String()},
		Cache:  CacheConfig{TTL: DefaultCacheTTL.String()},
		Log:    LogConfig{Level: DefaultLogLevel, Format: "text"},
	}
}

// Settings returns the export rule settings.
func (c *Config) Settings() rules.Settings {
	return rules.Settings{
		Margins:       c.Export.Margins,
		PrintPreset:   c.Export.PrintPreset,
		DigitalPreset: c.Export.DigitalPreset,
	}
}

// Target returns the configured export target, or fallback when none is set.
func (c *Config) Target(fallback document.Target) document.Target {
	if c.Export.Target == "" {
		return fallback
	}
	return document.Target(strings.ToUpper(c.Export.Target))
}

// NetworkIdle returns the parsed network idle duration.
func (c *Config) NetworkIdle() time.Duration {
	d, err := parseDuration(c.Render.NetworkIdle, DefaultNetworkIdle)
	if err != nil {
		return DefaultNetworkIdle
	}
	return d
}

// CacheTTL returns the parsed cache TTL.
func (c *Config) CacheTTL() time.Duration {
	d, err := parseDuration(c.Cache.TTL, DefaultCacheTTL)
	if err != nil {
		return DefaultCacheTTL
	}
	return d
}

// Validate checks ranges and field lengths. Called by LoadConfig, and
// available for configs built in code.
func (c *Config) Validate() error {
	if t := c.Export.Target; t != "" && !document.Target(strings.ToUpper(t)).Valid() {
		return fmt.Errorf("%w: export.target %q (must be DIGITAL or HARDCOPY)", ErrInvalidValue, t)
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: export: %v", ErrInvalidValue, err)
	}

	if err := validateFieldLength("render.browserBin", c.Render.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.serverlessChrome", c.Render.ServerlessChrome, MaxPathLength); err != nil {
		return err
	}
	if c.Render.MaxTabs < 0 || c.Render.MaxTabs > MaxTabsLimit {
		return fmt.Errorf("%w: render.maxTabs must be between 0 and %d, got %d", ErrInvalidValue, MaxTabsLimit, c.Render.MaxTabs)
	}
	idle, err := parseDuration(c.Render.NetworkIdle, DefaultNetworkIdle)
	if err != nil {
		return fmt.Errorf("%w: render.networkIdle: %v", ErrInvalidValue, err)
	}
	if idle < 0 || idle > MaxNetworkIdle {
		return fmt.Errorf("%w: render.networkIdle must be between 0 and %s, got %s", ErrInvalidValue, MaxNetworkIdle, idle)
	}

	if err := validateFieldLength("cache.location", c.Cache.Location, MaxURLLength); err != nil {
		return err
	}
	if ttl, err := parseDuration(c.Cache.TTL, DefaultCacheTTL); err != nil {
		return fmt.Errorf("%w: cache.ttl: %v", ErrInvalidValue, err)
	} else if ttl < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative, got %s", ErrInvalidValue, ttl)
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
		}
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case "text", "json", "logfmt":
		default:
			return fmt.Errorf("%w: log.format %q (must be text, json, or logfmt)", ErrInvalidValue, c.Log.Format)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator it is a file path; otherwise it
// is a config name searched in standard locations. The file format follows
// the extension: .toml is TOML, anything else YAML. Unknown keys are
// rejected in both formats. Values absent from the file keep their
// defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		err = unmarshalTOMLStrict(data, cfg)
	} else {
		err = unmarshalYAMLStrict(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/go-pagepdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-pagepdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
