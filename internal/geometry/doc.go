// Package geometry implements the crop model and page box model shared by
// validation, HTML rendering and interactive editors.
//
// Crop state is stored in normalized image coordinates: a crop rectangle
// inside the unit square, a pan point, a zoom in [1,5] and a rotation in
// [0,360). Every mutation (zoom, pan, handle resize) returns a new model that
// still satisfies those bounds.
//
// The page box model derives trim, bleed and safe boxes from a size preset.
// It is distinct from the configurable safe area used by print-safety rules.
package geometry
