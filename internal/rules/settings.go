package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/alnah/go-pagepdf/internal/geometry"
)

// Default export settings, in CSS pixels.
const (
	DefaultMarginPx               = 44
	DefaultPrintSafeAreaPadding   = 24
	DefaultPrintMinImageWidthPx   = 2000
	DefaultDigitalMinImageWidthPx = 1200
)

// LowResolutionBlockingRatio is the share of the hardcopy minimum image width
// below which a low resolution image blocks the export.
const LowResolutionBlockingRatio = 0.6

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = errors.New("invalid export settings")

// PrintPreset holds the hardcopy thresholds.
type PrintPreset struct {
	SafeAreaPadding float64 `json:"safeAreaPadding" yaml:"safeAreaPadding" toml:"safeAreaPadding"`
	MinImageWidthPx float64 `json:"minImageWidthPx" yaml:"minImageWidthPx" toml:"minImageWidthPx"`
}

// DigitalPreset holds the screen thresholds.
type DigitalPreset struct {
	MinImageWidthPx float64 `json:"minImageWidthPx" yaml:"minImageWidthPx" toml:"minImageWidthPx"`
}

// Settings are the per-document export settings consumed by the rules.
type Settings struct {
	Margins       geometry.Margins `json:"margins" yaml:"margins" toml:"margins"`
	PrintPreset   PrintPreset      `json:"printPreset" yaml:"printPreset" toml:"printPreset"`
	DigitalPreset DigitalPreset    `json:"digitalPreset" yaml:"digitalPreset" toml:"digitalPreset"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Margins: geometry.UniformMargins(DefaultMarginPx),
		PrintPreset: PrintPreset{
			SafeAreaPadding: DefaultPrintSafeAreaPadding,
			MinImageWidthPx: DefaultPrintMinImageWidthPx,
		},
		DigitalPreset: DigitalPreset{MinImageWidthPx: DefaultDigitalMinImageWidthPx},
	}
}

// Validate checks that every value is finite and non-negative.
func (s Settings) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"margins.top", s.Margins.Top},
		{"margins.right", s.Margins.Right},
		{"margins.bottom", s.Margins.Bottom},
		{"margins.left", s.Margins.Left},
		{"printPreset.safeAreaPadding", s.PrintPreset.SafeAreaPadding},
		{"printPreset.minImageWidthPx", s.PrintPreset.MinImageWidthPx},
		{"digitalPreset.minImageWidthPx", s.DigitalPreset.MinImageWidthPx},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidSettings, f.name, f.v)
		}
	}
	return nil
}

// SafeArea returns the settings-driven print safe area of a page of the
// given size. It is distinct from geometry.PageBoxModel's SafeBox, which
// comes from the static preset table.
func (s Settings) SafeArea(widthPx, heightPx float64) geometry.Box {
	return geometry.Inset(geometry.Box{W: widthPx, H: heightPx}, s.Margins, s.PrintPreset.SafeAreaPadding)
}
