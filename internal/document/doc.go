// Package document defines the renderable document contract: pages, the
// closed set of node variants, assets and crop state.
//
// ToRenderable is the single boundary where the legacy frame-based contract
// is converted; no other package needs to know about the legacy shape.
package document
