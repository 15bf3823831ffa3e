package pagepdf

import (
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
	"github.com/alnah/go-pagepdf/internal/layout"
)

// Crop types re-exported for editors that share the renderer's crop math.
type (
	CropModel      = geometry.CropModel
	RawCrop        = geometry.RawCrop
	RawRect        = geometry.RawRect
	RawPoint       = geometry.RawPoint
	SerializedCrop = geometry.SerializedCrop
	CropMode       = geometry.CropMode
	ObjectFit      = geometry.ObjectFit
	Handle         = geometry.Handle
	Rect           = geometry.Rect
	Point          = geometry.Point
	Presentation   = geometry.Presentation
)

// Crop modes, fits and resize handles.
const (
	CropModeFree  = geometry.ModeFree
	CropModeFrame = geometry.ModeFrame

	FitCover   = geometry.FitCover
	FitContain = geometry.FitContain

	HandleN  = geometry.HandleN
	HandleS  = geometry.HandleS
	HandleE  = geometry.HandleE
	HandleW  = geometry.HandleW
	HandleNW = geometry.HandleNW
	HandleNE = geometry.HandleNE
	HandleSW = geometry.HandleSW
	HandleSE = geometry.HandleSE

	MinCropZoom = geometry.MinZoom
	MaxCropZoom = geometry.MaxZoom
)

// Page box types re-exported for callers of this package.
type (
	SizePreset   = geometry.SizePreset
	BoxMode      = geometry.BoxMode
	PresetSpec   = geometry.PresetSpec
	Margins      = geometry.Margins
	Box          = geometry.Box
	PageBoxModel = geometry.PageBoxModel
)

// Page size presets and box modes.
const (
	PresetA4        = geometry.PresetA4
	PresetUSLetter  = geometry.PresetUSLetter
	PresetBook6x9   = geometry.PresetBook6x9
	PresetBook85x11 = geometry.PresetBook85x11

	BoxDigital  = geometry.BoxDigital
	BoxHardcopy = geometry.BoxHardcopy
)

// Geometry errors, matched with errors.Is.
var (
	ErrInvalidCropMode = geometry.ErrInvalidCropMode
	ErrInvalidFit      = geometry.ErrInvalidFit
	ErrInvalidHandle   = geometry.ErrInvalidHandle
	ErrUnknownPreset   = geometry.ErrUnknownPreset
)

// DefaultCrop returns a disabled free-mode crop showing the whole image.
func DefaultCrop() CropModel { return geometry.DefaultCrop() }

// NormalizeCrop builds a valid crop from stored state written by any editor
// version. Missing or non-finite values come from defaults; current field
// names win over the legacy focalX, focalY and scale.
func NormalizeCrop(raw RawCrop, defaults CropModel) (CropModel, error) {
	return geometry.Normalize(raw, defaults)
}

// SerializeCrop returns the persisted form of m, legacy names included.
func SerializeCrop(m CropModel) SerializedCrop { return geometry.Serialize(m) }

// ResetCropForMode returns an enabled crop in mode showing the whole image.
func ResetCropForMode(mode CropMode) CropModel { return geometry.ResetForMode(mode) }

// UpdateCropZoom sets the zoom clamped to [MinCropZoom, MaxCropZoom].
func UpdateCropZoom(m CropModel, zoom float64) CropModel { return geometry.UpdateZoom(m, zoom) }

// UpdateCropRotation sets the rotation, wrapped into [0, 360).
func UpdateCropRotation(m CropModel, deg float64) CropModel {
	return geometry.UpdateRotation(m, deg)
}

// PanCropByPixelDelta moves the pan point by a pointer delta measured on a
// frame of frameW x frameH pixels.
func PanCropByPixelDelta(m CropModel, dxPx, dyPx, frameW, frameH float64) CropModel {
	return geometry.PanByPixelDelta(m, dxPx, dyPx, frameW, frameH)
}

// ResizeCropRectByHandle drags the crop rectangle edges implied by h.
func ResizeCropRectByHandle(m CropModel, h Handle, dxPx, dyPx, frameW, frameH float64) (CropModel, error) {
	return geometry.ResizeRectByHandle(m, h, dxPx, dyPx, frameW, frameH)
}

// ImagePresentation maps a crop to the object-position, scale and rotation
// the PDF renderer uses, so previews can match the printed page.
func ImagePresentation(m CropModel) Presentation { return geometry.ImagePresentation(m) }

// LookupPreset returns the physical spec of a page size preset.
func LookupPreset(p SizePreset) (PresetSpec, error) { return geometry.LookupPreset(p) }

// UniformMargins returns margins with the same value on every side.
func UniformMargins(v float64) Margins { return geometry.UniformMargins(v) }

// BuildPageBoxModel computes the trim, bleed and safe boxes of a page.
func BuildPageBoxModel(preset SizePreset, widthPx, heightPx float64, m Margins, mode BoxMode) (PageBoxModel, error) {
	return geometry.BuildPageBoxModel(preset, widthPx, heightPx, m, mode)
}

// PxToPt converts CSS pixels to PDF points.
func PxToPt(px float64) float64 { return geometry.PxToPt(px) }

// PxToIn converts CSS pixels to inches.
func PxToIn(px float64) float64 { return geometry.PxToIn(px) }

// CanvasYToPDFY flips a top-left canvas y into a bottom-left PDF y.
func CanvasYToPDFY(pageHeightPx, yPx, heightPx float64) float64 {
	return geometry.CanvasYToPDFY(pageHeightPx, yPx, heightPx)
}

// Decoded is the result of Decode.
type Decoded = document.Decoded

// FlattenedNode is one node of a page in paint order.
type FlattenedNode = layout.Item

// Decode parses a renderable document or a legacy frame-based contract.
// Legacy input is converted with ToRenderable and kept in Decoded.Legacy.
func Decode(data []byte) (Decoded, error) { return document.Decode(data) }

// ToRenderable converts a legacy contract into a Document with a
// deterministic draw order per page.
func ToRenderable(c LegacyContract) Document { return document.ToRenderable(c) }

// FlattenPage returns the nodes of pageID in paint order, group children
// right after their group. An unknown page yields nil.
func FlattenPage(doc Document, pageID string) []FlattenedNode {
	return layout.FlattenPage(doc, pageID)
}
