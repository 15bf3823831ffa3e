package pagepdf

import (
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fingerprint"
	"github.com/alnah/go-pagepdf/internal/rules"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// Document contract types re-exported for callers of this package.
type (
	Document       = document.Document
	LegacyContract = document.LegacyContract
	LegacyPage     = document.LegacyPage
	LegacyFrame    = document.LegacyFrame
	Target         = document.Target
	Asset          = document.Asset
	AssetResolver  = document.AssetResolver
)

// Export targets.
const (
	TargetDigital  = document.TargetDigital
	TargetHardcopy = document.TargetHardcopy
)

// Validation types re-exported for callers of this package.
type (
	Settings         = rules.Settings
	TargetResult     = rules.Result
	StructuralResult = validate.Result
	FingerprintInput = fingerprint.Input
)

// DefaultSettings returns the documented export defaults.
func DefaultSettings() Settings { return rules.DefaultSettings() }

// ExportHash fingerprints the identity and version metadata of a storybook.
func ExportHash(in FingerprintInput) string { return fingerprint.ExportHash(in) }

// Warning codes added by the renderer.
const (
	WarningTextOverflow     = rules.CodeTextOverflow
	WarningPageCountChanged = "PDF_PAGE_COUNT_MISMATCH"
)

// Warning is a non-blocking finding reported alongside a rendered PDF.
type Warning struct {
	Code    string `json:"code"`
	PageID  string `json:"pageId,omitempty"`
	NodeID  string `json:"nodeId,omitempty"`
	Message string `json:"message"`
}

// RenderMeta describes a rendered PDF.
type RenderMeta struct {
	PageCount   int       `json:"pageCount"`
	Fingerprint string    `json:"fingerprint"`
	Warnings    []Warning `json:"warnings"`
	RenderID    string    `json:"renderId"`
	Cached      bool      `json:"cached"`
}

// RenderResult holds the PDF bytes and their metadata.
type RenderResult struct {
	PDF  []byte
	Meta RenderMeta
}

// Preflight is the full validation report of a document for one target.
// Structural errors make the document unrenderable; blocking target issues
// stop an export.
type Preflight struct {
	Target     Target           `json:"target"`
	Structural StructuralResult `json:"structural"`
	Rules      TargetResult     `json:"rules"`
}

// Exportable reports whether an export of the document would proceed.
func (p Preflight) Exportable() bool {
	return p.Structural.OK && p.Rules.OK
}
