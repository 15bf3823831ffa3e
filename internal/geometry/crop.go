package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for crop operations.
var (
	ErrInvalidCropMode = errors.New("invalid crop mode")
	ErrInvalidFit      = errors.New("invalid object fit")
	ErrInvalidHandle   = errors.New("invalid resize handle")
)

// CropMode selects how the pan point relates to the crop rectangle.
type CropMode string

const (
	// ModeFree pans over the whole image independently of the rectangle.
	ModeFree CropMode = "free"
	// ModeFrame keeps the pan point inside the rectangle (focal point of the window).
	ModeFrame CropMode = "frame"
)

// ObjectFit mirrors the CSS object-fit values supported by renderers.
type ObjectFit string

const (
	FitCover   ObjectFit = "cover"
	FitContain ObjectFit = "contain"
)

// Handle identifies the edge or corner dragged during an interactive resize.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNW Handle = "nw"
	HandleNE Handle = "ne"
	HandleSW Handle = "sw"
	HandleSE Handle = "se"
)

// Crop limits.
const (
	MinZoom = 1.0
	MaxZoom = 5.0

	// MinRectSize applies to every normalized rectangle.
	MinRectSize = 0.01

	// MinResizeSize applies while a handle is being dragged.
	MinResizeSize = 0.05
)

// Rect is a rectangle in normalized [0,1] image coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a point in normalized [0,1] image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CropModel is the normalized crop state of an image-bearing node.
type CropModel struct {
	Enabled     bool      `json:"enabled"`
	Mode        CropMode  `json:"mode"`
	RectNorm    Rect      `json:"rectNorm"`
	PanNorm     Point     `json:"panNorm"`
	Zoom        float64   `json:"zoom"`
	RotationDeg float64   `json:"rotationDeg"`
	ObjectFit   ObjectFit `json:"objectFit"`
}

// RawRect is a partially specified rectangle as found in stored documents.
type RawRect struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// RawPoint is a partially specified point as found in stored documents.
type RawPoint struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// RawCrop is crop state as persisted by any version of the editor.
// FocalX, FocalY and Scale are the legacy names for PanNorm and Zoom.
type RawCrop struct {
	Enabled     *bool     `json:"enabled,omitempty"`
	Mode        *string   `json:"mode,omitempty"`
	RectNorm    *RawRect  `json:"rectNorm,omitempty"`
	PanNorm     *RawPoint `json:"panNorm,omitempty"`
	Zoom        *float64  `json:"zoom,omitempty"`
	RotationDeg *float64  `json:"rotationDeg,omitempty"`
	ObjectFit   *string   `json:"objectFit,omitempty"`

	FocalX *float64 `json:"focalX,omitempty"`
	FocalY *float64 `json:"focalY,omitempty"`
	Scale  *float64 `json:"scale,omitempty"`
}

// SerializedCrop is the persisted form written by Serialize. It carries the
// current field names and the legacy focalX/focalY/scale with equal values.
type SerializedCrop struct {
	Enabled     bool    `json:"enabled"`
	Mode        string  `json:"mode"`
	RectNorm    Rect    `json:"rectNorm"`
	PanNorm     Point   `json:"panNorm"`
	Zoom        float64 `json:"zoom"`
	RotationDeg float64 `json:"rotationDeg"`
	ObjectFit   string  `json:"objectFit"`
	FocalX      float64 `json:"focalX"`
	FocalY      float64 `json:"focalY"`
	Scale       float64 `json:"scale"`
}

// DefaultCrop returns a disabled free-mode crop showing the whole image.
func DefaultCrop() CropModel {
	return CropModel{
		Enabled:   false,
		Mode:      ModeFree,
		RectNorm:  Rect{X: 0, Y: 0, W: 1, H: 1},
		PanNorm:   Point{X: 0.5, Y: 0.5},
		Zoom:      MinZoom,
		ObjectFit: FitCover,
	}
}

// Normalize builds a valid CropModel from raw stored state, filling missing or
// non-finite values from defaults. Current field names win over legacy ones.
// Normalizing the serialized form of a normalized model yields the same model.
func Normalize(raw RawCrop, defaults CropModel) (CropModel, error) {
	m := defaults

	if raw.Enabled != nil {
		m.Enabled = *raw.Enabled
	}
	if raw.Mode != nil {
		mode, err := parseMode(*raw.Mode)
		if err != nil {
			return CropModel{}, err
		}
		m.Mode = mode
	}
	if raw.ObjectFit != nil {
		fit, err := parseFit(*raw.ObjectFit)
		if err != nil {
			return CropModel{}, err
		}
		m.ObjectFit = fit
	}
	if m.Mode == "" {
		m.Mode = ModeFree
	}
	if m.ObjectFit == "" {
		m.ObjectFit = FitCover
	}

	if raw.RectNorm != nil {
		m.RectNorm.X = pick(raw.RectNorm.X, m.RectNorm.X)
		m.RectNorm.Y = pick(raw.RectNorm.Y, m.RectNorm.Y)
		m.RectNorm.W = pick(raw.RectNorm.W, m.RectNorm.W)
		m.RectNorm.H = pick(raw.RectNorm.H, m.RectNorm.H)
	}
	m.RectNorm = clampRect(m.RectNorm, MinRectSize)

	switch {
	case raw.PanNorm != nil:
		m.PanNorm.X = pick(raw.PanNorm.X, m.PanNorm.X)
		m.PanNorm.Y = pick(raw.PanNorm.Y, m.PanNorm.Y)
	case raw.FocalX != nil || raw.FocalY != nil:
		m.PanNorm.X = pick(raw.FocalX, m.PanNorm.X)
		m.PanNorm.Y = pick(raw.FocalY, m.PanNorm.Y)
	}
	m.PanNorm = clampPan(m.PanNorm, m.RectNorm, m.Mode)

	switch {
	case raw.Zoom != nil:
		m.Zoom = pick(raw.Zoom, m.Zoom)
	case raw.Scale != nil:
		m.Zoom = pick(raw.Scale, m.Zoom)
	}
	m.Zoom = clampZoom(m.Zoom)

	if raw.RotationDeg != nil {
		m.RotationDeg = pick(raw.RotationDeg, m.RotationDeg)
	}
	m.RotationDeg = normalizeDegrees(m.RotationDeg)

	return m, nil
}

// Serialize returns the persisted form of m, including legacy field names.
func Serialize(m CropModel) SerializedCrop {
	return SerializedCrop{
		Enabled:     m.Enabled,
		Mode:        string(m.Mode),
		RectNorm:    m.RectNorm,
		PanNorm:     m.PanNorm,
		Zoom:        m.Zoom,
		RotationDeg: m.RotationDeg,
		ObjectFit:   string(m.ObjectFit),
		FocalX:      m.PanNorm.X,
		FocalY:      m.PanNorm.Y,
		Scale:       m.Zoom,
	}
}

// Raw converts the serialized form back into raw input for Normalize.
func (s SerializedCrop) Raw() RawCrop {
	enabled := s.Enabled
	mode := s.Mode
	fit := s.ObjectFit
	x, y, w, h := s.RectNorm.X, s.RectNorm.Y, s.RectNorm.W, s.RectNorm.H
	px, py := s.PanNorm.X, s.PanNorm.Y
	zoom, rot := s.Zoom, s.RotationDeg
	fx, fy, scale := s.FocalX, s.FocalY, s.Scale
	return RawCrop{
		Enabled:     &enabled,
		Mode:        &mode,
		RectNorm:    &RawRect{X: &x, Y: &y, W: &w, H: &h},
		PanNorm:     &RawPoint{X: &px, Y: &py},
		Zoom:        &zoom,
		RotationDeg: &rot,
		ObjectFit:   &fit,
		FocalX:      &fx,
		FocalY:      &fy,
		Scale:       &scale,
	}
}

// ResetForMode returns an enabled crop in the given mode showing the whole image.
func ResetForMode(mode CropMode) CropModel {
	m := DefaultCrop()
	m.Enabled = true
	if mode == ModeFrame {
		m.Mode = ModeFrame
	}
	return m
}

// UpdateZoom sets the zoom clamped to [MinZoom, MaxZoom].
// Non-finite values leave the model unchanged.
func UpdateZoom(m CropModel, zoom float64) CropModel {
	if !finite(zoom) {
		return m
	}
	m.Zoom = clampZoom(zoom)
	return m
}

// UpdateRotation sets the rotation, wrapped into [0, 360).
func UpdateRotation(m CropModel, deg float64) CropModel {
	if !finite(deg) {
		return m
	}
	m.RotationDeg = normalizeDegrees(deg)
	return m
}

// PanByPixelDelta moves the pan point by a pixel delta measured on a frame of
// frameW x frameH pixels. The delta is scaled by the current zoom so pan speed
// matches the pointer at every zoom level.
func PanByPixelDelta(m CropModel, dxPx, dyPx, frameW, frameH float64) CropModel {
	if !finite(dxPx) || !finite(dyPx) || !(frameW > 0) || !(frameH > 0) {
		return m
	}
	zoom := clampZoom(m.Zoom)
	m.PanNorm.X += dxPx / (frameW * zoom)
	m.PanNorm.Y += dyPx / (frameH * zoom)
	m.PanNorm = clampPan(m.PanNorm, m.RectNorm, m.Mode)
	return m
}

// ResizeRectByHandle drags the edges implied by handle by a pixel delta.
// The opposite edges stay fixed; the rectangle never shrinks below
// MinResizeSize. The rectangle is clamped into the unit square before the pan
// point is reconciled with it.
func ResizeRectByHandle(m CropModel, h Handle, dxPx, dyPx, frameW, frameH float64) (CropModel, error) {
	moveN, moveS, moveE, moveW, err := handleEdges(h)
	if err != nil {
		return m, err
	}
	if !finite(dxPx) || !finite(dyPx) || !(frameW > 0) || !(frameH > 0) {
		return m, nil
	}

	dx := dxPx / frameW
	dy := dyPx / frameH
	r := clampRect(m.RectNorm, MinRectSize)
	left, top := r.X, r.Y
	right, bottom := r.X+r.W, r.Y+r.H

	if moveW {
		left = clamp(left+dx, 0, 1)
		if right-left < MinResizeSize {
			left = right - MinResizeSize
		}
	}
	if moveE {
		right = clamp(right+dx, 0, 1)
		if right-left < MinResizeSize {
			right = left + MinResizeSize
		}
	}
	if moveN {
		top = clamp(top+dy, 0, 1)
		if bottom-top < MinResizeSize {
			top = bottom - MinResizeSize
		}
	}
	if moveS {
		bottom = clamp(bottom+dy, 0, 1)
		if bottom-top < MinResizeSize {
			bottom = top + MinResizeSize
		}
	}

	m.RectNorm = clampRect(Rect{X: left, Y: top, W: right - left, H: bottom - top}, MinResizeSize)
	m.PanNorm = reconcilePan(m.PanNorm, m.RectNorm, m.Mode)
	return m, nil
}

// Presentation is how a renderer must draw a cropped image.
type Presentation struct {
	// PositionX and PositionY are object-position percentages.
	PositionX   float64
	PositionY   float64
	Scale       float64
	RotationDeg float64
	ObjectFit   ObjectFit
}

// ImagePresentation maps a crop model to object-position and scale.
// Every renderer, interactive or not, goes through this function.
func ImagePresentation(m CropModel) Presentation {
	fit := m.ObjectFit
	if fit != FitContain {
		fit = FitCover
	}
	if !m.Enabled {
		return Presentation{PositionX: 50, PositionY: 50, Scale: 1, ObjectFit: fit}
	}

	r := clampRect(m.RectNorm, MinRectSize)
	px := clamp(m.PanNorm.X, r.X, r.X+r.W)
	py := clamp(m.PanNorm.Y, r.Y, r.Y+r.H)
	zoom := clampZoom(m.Zoom)

	var scale float64
	if fit == FitContain {
		scale = zoom * (1 / math.Max(r.W, r.H))
	} else {
		scale = zoom * (1 / math.Min(r.W, r.H))
	}

	return Presentation{
		PositionX:   px * 100,
		PositionY:   py * 100,
		Scale:       scale,
		RotationDeg: normalizeDegrees(m.RotationDeg),
		ObjectFit:   fit,
	}
}

func parseMode(s string) (CropMode, error) {
	switch CropMode(s) {
	case ModeFree, ModeFrame:
		return CropMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCropMode, s)
}

func parseFit(s string) (ObjectFit, error) {
	switch ObjectFit(s) {
	case FitCover, FitContain:
		return ObjectFit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFit, s)
}

func handleEdges(h Handle) (n, s, e, w bool, err error) {
	switch h {
	case HandleN:
		return true, false, false, false, nil
	case HandleS:
		return false, true, false, false, nil
	case HandleE:
		return false, false, true, false, nil
	case HandleW:
		return false, false, false, true, nil
	case HandleNW:
		return true, false, false, true, nil
	case HandleNE:
		return true, false, true, false, nil
	case HandleSW:
		return false, true, false, true, nil
	case HandleSE:
		return false, true, true, false, nil
	}
	return false, false, false, false, fmt.Errorf("%w: %q", ErrInvalidHandle, h)
}

// clampRect fits r inside the unit square with sides of at least minSize.
// Position is adjusted after size so the size is preserved where possible.
func clampRect(r Rect, minSize float64) Rect {
	if !finite(r.W) {
		r.W = 1
	}
	if !finite(r.H) {
		r.H = 1
	}
	if !finite(r.X) {
		r.X = 0
	}
	if !finite(r.Y) {
		r.Y = 0
	}
	r.W = clamp(r.W, minSize, 1)
	r.H = clamp(r.H, minSize, 1)
	r.X = clamp(r.X, 0, 1-r.W)
	r.Y = clamp(r.Y, 0, 1-r.H)
	return r
}

func clampPan(p Point, r Rect, mode CropMode) Point {
	if !finite(p.X) {
		p.X = 0.5
	}
	if !finite(p.Y) {
		p.Y = 0.5
	}
	if mode == ModeFrame {
		return Point{X: clamp(p.X, r.X, r.X+r.W), Y: clamp(p.Y, r.Y, r.Y+r.H)}
	}
	return Point{X: clamp(p.X, 0, 1), Y: clamp(p.Y, 0, 1)}
}

// reconcilePan keeps a free-mode pan in the unit square and re-centers a
// frame-mode pan that the new rectangle no longer contains.
func reconcilePan(p Point, r Rect, mode CropMode) Point {
	if mode != ModeFrame {
		return clampPan(p, r, mode)
	}
	if p.X < r.X || p.X > r.X+r.W || p.Y < r.Y || p.Y > r.Y+r.H || !finite(p.X) || !finite(p.Y) {
		return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
	}
	return p
}

func clampZoom(z float64) float64 {
	if !finite(z) {
		return MinZoom
	}
	return clamp(z, MinZoom, MaxZoom)
}

func normalizeDegrees(deg float64) float64 {
	if !finite(deg) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

func pick(v *float64, fallback float64) float64 {
	if v == nil || !finite(*v) {
		return fallback
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
