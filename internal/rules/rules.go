// Package rules applies the export-target business rules to a document.
//
// The digital rule set never blocks an export. The hardcopy rule set blocks
// on content leaving the page, text leaving the print safe area and images
// far below the print resolution.
package rules

import (
	"fmt"
	"sort"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
)

// Severity of an export issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeFrameOutsidePage      = "FRAME_OUTSIDE_PAGE"
	CodeTextOutsideSafeArea   = "TEXT_OUTSIDE_SAFE_AREA"
	CodeImageLowResolution    = "IMAGE_LOW_RESOLUTION"
	CodeImageResolutionTooLow = "IMAGE_RESOLUTION_TOO_LOW"
	CodeTextOverflow          = "TEXT_OVERFLOW"
)

// Issue is one export-target finding.
type Issue struct {
	Code     string          `json:"code"`
	Target   document.Target `json:"target"`
	Severity Severity        `json:"severity"`
	Blocking bool            `json:"blocking"`
	PageID   string          `json:"pageId"`
	FrameID  string          `json:"frameId,omitempty"`
	Path     string          `json:"path"`
	Message  string          `json:"message"`
}

// Result is the outcome of Validate. OK is false exactly when
// BlockingIssues is not empty.
type Result struct {
	OK             bool    `json:"ok"`
	Issues         []Issue `json:"issues"`
	BlockingIssues []Issue `json:"blockingIssues"`
	Warnings       []Issue `json:"warnings"`
}

// Validate applies the rule set of target to doc. Nodes on unknown pages
// are skipped; the structural validator reports them.
func Validate(doc document.Document, target document.Target, s Settings) Result {
	c := checker{target: target, settings: s, assets: doc.AssetIndex()}

	pageIndex := make(map[string]int, len(doc.Pages))
	for i, p := range doc.Pages {
		if _, dup := pageIndex[p.ID]; !dup {
			pageIndex[p.ID] = i
		}
	}

	for _, pi := range pageOrder(doc.Pages, pageIndex) {
		page := doc.Pages[pi]
		for ni, n := range doc.Nodes {
			if n.PageID != page.ID {
				continue
			}
			c.checkNode(page, n, fmt.Sprintf("nodes[%d]", ni))
		}
	}
	return c.result()
}

// ValidateLegacy converts a legacy contract and validates it.
func ValidateLegacy(c document.LegacyContract, target document.Target, s Settings) Result {
	return Validate(document.ToRenderable(c), target, s)
}

type checker struct {
	target   document.Target
	settings Settings
	assets   map[string]document.Asset
	issues   []Issue
}

func (c *checker) add(code string, sev Severity, blocking bool, pageID, frameID, path, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Code:     code,
		Target:   c.target,
		Severity: sev,
		Blocking: blocking,
		PageID:   pageID,
		FrameID:  frameID,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) hardcopy() bool { return c.target == document.TargetHardcopy }

func (c *checker) checkNode(page document.Page, n document.Node, path string) {
	c.checkInsidePage(page, n, path)

	switch n.Type {
	case document.NodeText:
		if c.hardcopy() {
			c.checkSafeArea(page, n, path)
		}
		if nodeOverflows(n) {
			c.add(CodeTextOverflow, SeverityWarning, false, page.ID, n.ID, path+".content.text",
				"text in %q probably does not fit its box", n.ID)
		}
	case document.NodeImage, document.NodeFrame:
		c.checkResolution(page, n, path)
	}
}

func (c *checker) checkInsidePage(page document.Page, n document.Node, path string) {
	trim := geometry.Box{W: page.WidthPx, H: page.HeightPx}
	if trim.Contains(n.Bounds()) {
		return
	}
	if c.hardcopy() {
		c.add(CodeFrameOutsidePage, SeverityError, true, page.ID, n.ID, path,
			"%q extends beyond the page trim and would be cut", n.ID)
		return
	}
	c.add(CodeFrameOutsidePage, SeverityWarning, false, page.ID, n.ID, path,
		"%q extends beyond the page", n.ID)
}

func (c *checker) checkSafeArea(page document.Page, n document.Node, path string) {
	if c.settings.SafeArea(page.WidthPx, page.HeightPx).Contains(n.Bounds()) {
		return
	}
	c.add(CodeTextOutsideSafeArea, SeverityError, true, page.ID, n.ID, path,
		"text %q is outside the print safe area", n.ID)
}

func (c *checker) checkResolution(page document.Page, n document.Node, path string) {
	asset, ok := document.ImageAsset(n, c.assets)
	if !ok || asset.Width <= 0 {
		return
	}
	width := float64(asset.Width)

	if !c.hardcopy() {
		minWidth := c.settings.DigitalPreset.MinImageWidthPx
		if width < minWidth {
			c.add(CodeImageLowResolution, SeverityWarning, false, page.ID, n.ID, path+".content.assetId",
				"image is %dpx wide, below the %gpx recommended for screen", asset.Width, minWidth)
		}
		return
	}

	minWidth := c.settings.PrintPreset.MinImageWidthPx
	switch {
	case width < minWidth*LowResolutionBlockingRatio:
		c.add(CodeImageResolutionTooLow, SeverityError, true, page.ID, n.ID, path+".content.assetId",
			"image is %dpx wide, far below the %gpx required for print", asset.Width, minWidth)
	case width < minWidth:
		c.add(CodeImageLowResolution, SeverityWarning, false, page.ID, n.ID, path+".content.assetId",
			"image is %dpx wide, below the %gpx recommended for print", asset.Width, minWidth)
	}
}

func (c *checker) result() Result {
	res := Result{OK: true, Issues: c.issues}
	for _, is := range c.issues {
		if is.Blocking {
			res.BlockingIssues = append(res.BlockingIssues, is)
			res.OK = false
		} else {
			res.Warnings = append(res.Warnings, is)
		}
	}
	return res
}

// pageOrder returns the indexes of the first page of each id, sorted by
// (orderIndex, id).
func pageOrder(pages []document.Page, first map[string]int) []int {
	idx := make([]int, 0, len(first))
	for i, p := range pages {
		if first[p.ID] == i {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := pages[idx[a]], pages[idx[b]]
		if pa.OrderIndex != pb.OrderIndex {
			return pa.OrderIndex < pb.OrderIndex
		}
		return pa.ID < pb.ID
	})
	return idx
}
