package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
	"github.com/alnah/go-pagepdf/internal/rules"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if diff := cmp.Diff(rules.DefaultSettings(), cfg.Settings()); diff != "" {
		t.Errorf("Settings() mismatch (-want +got):\n%s", diff)
	}
	if cfg.NetworkIdle() != DefaultNetworkIdle {
		t.Errorf("NetworkIdle() = %s, want %s", cfg.NetworkIdle(), DefaultNetworkIdle)
	}
	if cfg.CacheTTL() != DefaultCacheTTL {
		t.Errorf("CacheTTL() = %s, want %s", cfg.CacheTTL(), DefaultCacheTTL)
	}
	if cfg.Cache.Location != "" {
		t.Errorf("Cache.Location = %q, want empty", cfg.Cache.Location)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Target(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if got := cfg.Target(document.TargetDigital); got != document.TargetDigital {
		t.Errorf("Target() = %s, want fallback DIGITAL", got)
	}
	cfg.Export.Target = "hardcopy"
	if got := cfg.Target(document.TargetDigital); got != document.TargetHardcopy {
		t.Errorf("Target() = %s, want HARDCOPY", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "lowercase target", mutate: func(c *Config) { c.Export.Target = "digital" }},
		{name: "unknown target", mutate: func(c *Config) { c.Export.Target = "SCREEN" }, wantErr: ErrInvalidValue},
		{name: "negative margin", mutate: func(c *Config) { c.Export.Margins.Top = -4 }, wantErr: ErrInvalidValue},
		{name: "negative min width", mutate: func(c *Config) { c.Export.PrintPreset.MinImageWidthPx = -1 }, wantErr: ErrInvalidValue},
		{name: "too many tabs", mutate: func(c *Config) { c.Render.MaxTabs = MaxTabsLimit + 1 }, wantErr: ErrInvalidValue},
		{name: "negative tabs", mutate: func(c *Config) { c.Render.MaxTabs = -1 }, wantErr: ErrInvalidValue},
		{name: "bad network idle", mutate: func(c *Config) { c.Render.NetworkIdle = "soon" }, wantErr: ErrInvalidValue},
		{name: "network idle too long", mutate: func(c *Config) { c.Render.NetworkIdle = "2m" }, wantErr: ErrInvalidValue},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = "-1h" }, wantErr: ErrInvalidValue},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTL = "0" }},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: ErrInvalidValue},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: ErrInvalidValue},
		{name: "browser path too long", mutate: func(c *Config) { c.Render.BrowserBin = strings.Repeat("a", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
		{name: "cache location too long", mutate: func(c *Config) { c.Cache.Location = strings.Repeat("a", MaxURLLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "print.yaml", `
export:
  target: HARDCOPY
  margins: {top: 48, right: 48, bottom: 48, left: 48}
  printPreset:
    safeAreaPadding: 30
    minImageWidthPx: 2400
render:
  maxTabs: 4
  networkIdle: 1s
cache:
  location: /tmp/pagepdf-cache
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() unexpected error: %v", err)
		}

		want := rules.Settings{
			Margins:       geometry.UniformMargins(48),
			PrintPreset:   rules.PrintPreset{SafeAreaPadding: 30, MinImageWidthPx: 2400},
			DigitalPreset: rules.DigitalPreset{MinImageWidthPx: rules.DefaultDigitalMinImageWidthPx},
		}
		if diff := cmp.Diff(want, cfg.Settings()); diff != "" {
			t.Errorf("Settings() mismatch (-want +got):\n%s", diff)
		}
		if cfg.Render.MaxTabs != 4 || cfg.NetworkIdle() != time.Second {
			t.Errorf("render = %+v", cfg.Render)
		}
		if cfg.Target("") != document.TargetHardcopy {
			t.Errorf("Target() = %s", cfg.Target(""))
		}
		if cfg.Cache.Location != "/tmp/pagepdf-cache" {
			t.Errorf("Cache.Location = %q", cfg.Cache.Location)
		}
	})

	t.Run("toml file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "screen.toml", `
[export]
target = "DIGITAL"

[export.digitalPreset]
minImageWidthPx = 1600

[cache]
location = "redis://localhost:6379/0"
ttl = "1h"

[log]
level = "debug"
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() unexpected error: %v", err)
		}
		if cfg.Export.DigitalPreset.MinImageWidthPx != 1600 {
			t.Errorf("digital min width = %v, want 1600", cfg.Export.DigitalPreset.MinImageWidthPx)
		}
		if cfg.Export.PrintPreset.MinImageWidthPx != rules.DefaultPrintMinImageWidthPx {
			t.Errorf("print min width default lost: %v", cfg.Export.PrintPreset.MinImageWidthPx)
		}
		if cfg.CacheTTL() != time.Hour || cfg.Log.Level != "debug" {
			t.Errorf("cache ttl = %s, log level = %q", cfg.CacheTTL(), cfg.Log.Level)
		}
	})

	t.Run("unknown yaml key rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "bad.yaml", "export:\n  bleed: 12\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown toml key rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "bad.toml", "[render]\nheadless = false\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Fatalf("error = %v, want ErrConfigParse", err)
		}
		if !strings.Contains(err.Error(), "render.headless") {
			t.Errorf("error %q does not name the key", err)
		}
	})

	t.Run("invalid values rejected after parsing", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "tabs.yaml", "render:\n  maxTabs: 500\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("empty file rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "empty.yaml", "")
		if _, err := LoadConfig(path); !errors.Is(err, ErrNilData) {
			t.Errorf("error = %v, want ErrNilData", err)
		}
	})

	t.Run("missing file path", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("missing config name lists tried paths", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("pagepdf-config-that-does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), ".toml") {
			t.Errorf("error %q does not mention the .toml candidate", err)
		}
	})
}

func TestUnmarshalYAMLStrict_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("log:\n  level: " + strings.Repeat("x", MaxInputSize) + "\n")
	var cfg Config
	if err := unmarshalYAMLStrict(data, &cfg); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

func TestUnmarshal_NilDestination(t *testing.T) {
	t.Parallel()

	if err := unmarshalYAMLStrict([]byte("a: 1"), nil); !errors.Is(err, ErrNilDestination) {
		t.Errorf("yaml error = %v, want ErrNilDestination", err)
	}
	if err := unmarshalTOMLStrict([]byte("a = 1"), nil); !errors.Is(err, ErrNilDestination) {
		t.Errorf("toml error = %v, want ErrNilDestination", err)
	}
}
