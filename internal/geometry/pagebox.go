package geometry

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned for page size presets outside the supported set.
var ErrUnknownPreset = errors.New("unknown page size preset")

// SizePreset names a supported physical page size.
type SizePreset string

const (
	PresetA4        SizePreset = "A4"
	PresetUSLetter  SizePreset = "US_LETTER"
	PresetBook6x9   SizePreset = "BOOK_6x9"
	PresetBook85x11 SizePreset = "BOOK_8.5x11"
)

// BoxMode selects which physical allowances the page box model includes.
type BoxMode string

const (
	BoxDigital  BoxMode = "digital"
	BoxHardcopy BoxMode = "hardcopy"
)

// CSS reference resolution used by the editor canvas and Chrome.
const (
	PixelsPerInch = 96.0
	PointsPerInch = 72.0
)

// PresetSpec holds the physical properties of a size preset.
type PresetSpec struct {
	Preset   SizePreset
	WidthIn  float64
	HeightIn float64
	// BleedPx extends the trim box on every side for hardcopy output.
	BleedPx float64
	// SafePaddingPx insets the margin box for hardcopy output.
	SafePaddingPx float64
}

// WidthPx is the preset width at 96 dpi, rounded to whole pixels.
func (s PresetSpec) WidthPx() float64 { return roundPx(s.WidthIn * PixelsPerInch) }

// HeightPx is the preset height at 96 dpi, rounded to whole pixels.
func (s PresetSpec) HeightPx() float64 { return roundPx(s.HeightIn * PixelsPerInch) }

var presets = map[SizePreset]PresetSpec{
	PresetA4:        {Preset: PresetA4, WidthIn: 8.27, HeightIn: 11.69, BleedPx: 12, SafePaddingPx: 24},
	PresetUSLetter:  {Preset: PresetUSLetter, WidthIn: 8.5, HeightIn: 11, BleedPx: 12, SafePaddingPx: 24},
	PresetBook6x9:   {Preset: PresetBook6x9, WidthIn: 6, HeightIn: 9, BleedPx: 12, SafePaddingPx: 18},
	PresetBook85x11: {Preset: PresetBook85x11, WidthIn: 8.5, HeightIn: 11, BleedPx: 12, SafePaddingPx: 24},
}

// LookupPreset returns the physical spec of a preset.
func LookupPreset(p SizePreset) (PresetSpec, error) {
	spec, ok := presets[p]
	if !ok {
		return PresetSpec{}, fmt.Errorf("%w: %q", ErrUnknownPreset, p)
	}
	return spec, nil
}

// Margins are page margins in CSS pixels.
type Margins struct {
	Top    float64 `json:"top" yaml:"top" toml:"top"`
	Right  float64 `json:"right" yaml:"right" toml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom" toml:"bottom"`
	Left   float64 `json:"left" yaml:"left" toml:"left"`
}

// UniformMargins returns margins with the same value on every side.
func UniformMargins(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

// Box is an axis-aligned rectangle in page pixels, origin top-left.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Contains reports whether o lies entirely inside b.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.Right() <= b.Right() && o.Bottom() <= b.Bottom()
}

// PageBoxModel is the static physical box model of a page. It drives page
// sizing and debug overlays; print-safety validation uses its own
// settings-driven safe area instead.
type PageBoxModel struct {
	TrimBox  Box
	BleedBox Box
	SafeBox  Box
}

// BuildPageBoxModel computes trim, bleed and safe boxes for a page.
// Digital output has no bleed and no safe padding beyond the margins.
func BuildPageBoxModel(preset SizePreset, widthPx, heightPx float64, m Margins, mode BoxMode) (PageBoxModel, error) {
	spec, err := LookupPreset(preset)
	if err != nil {
		return PageBoxModel{}, err
	}

	bleed, pad := 0.0, 0.0
	if mode == BoxHardcopy {
		bleed = spec.BleedPx
		pad = spec.SafePaddingPx
	}

	trim := Box{X: 0, Y: 0, W: widthPx, H: heightPx}
	return PageBoxModel{
		TrimBox:  trim,
		BleedBox: Box{X: -bleed, Y: -bleed, W: widthPx + 2*bleed, H: heightPx + 2*bleed},
		SafeBox:  Inset(trim, m, pad),
	}, nil
}

// Inset shrinks b by the margins plus an extra padding on every side.
// The result never has negative size.
func Inset(b Box, m Margins, pad float64) Box {
	x := b.X + m.Left + pad
	y := b.Y + m.Top + pad
	w := b.W - m.Left - m.Right - 2*pad
	h := b.H - m.Top - m.Bottom - 2*pad
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Box{X: x, Y: y, W: w, H: h}
}

// PxToPt converts CSS pixels to PDF points.
func PxToPt(px float64) float64 {
	return px * (PointsPerInch / PixelsPerInch)
}

// PxToIn converts CSS pixels to inches.
func PxToIn(px float64) float64 {
	return px / PixelsPerInch
}

// CanvasYToPDFY flips a top-left canvas y into a bottom-left PDF y for a box
// of the given height.
func CanvasYToPDFY(pageHeightPx, yPx, heightPx float64) float64 {
	return pageHeightPx - (yPx + heightPx)
}

func roundPx(v float64) float64 {
	return float64(int64(v + 0.5))
}
