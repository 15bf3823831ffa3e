// Package validate checks the structural invariants of a document,
// independently of the export target.
//
// Validation never fails: every finding is returned as an Issue so preflight
// flows can show the complete list. A document with at least one
// error-severity issue must not be rendered.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
)

// Severity of a structural issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeInvalidRenderVersion    = "INVALID_RENDER_VERSION"
	CodePageDuplicateID         = "PAGE_DUPLICATE_ID"
	CodeUnsupportedPagePreset   = "UNSUPPORTED_PAGE_PRESET"
	CodeInvalidPageSize         = "INVALID_PAGE_SIZE"
	CodeNodeDuplicateID         = "NODE_DUPLICATE_ID"
	CodeInvalidNodeBounds       = "INVALID_NODE_BOUNDS"
	CodeNodeMissingPage         = "NODE_MISSING_PAGE"
	CodeDrawOrderUnknownNode    = "DRAW_ORDER_UNKNOWN_NODE"
	CodeDrawOrderMissingNode    = "DRAW_ORDER_MISSING_NODE"
	CodeDrawOrderDuplicateNode  = "DRAW_ORDER_DUPLICATE_NODE"
	CodeUnsupportedNodeType     = "UNSUPPORTED_NODE_TYPE"
	CodeMissingImageSource      = "MISSING_IMAGE_SOURCE"
	CodeMissingFrameImageSource = "MISSING_FRAME_IMAGE_SOURCE"
	CodeInvalidCropZoom         = "INVALID_CROP_ZOOM"
	CodeInvalidCrop             = "INVALID_CROP"
	CodeTextFontFallback        = "TEXT_FONT_FALLBACK"
	CodeTextDecorationFallback  = "TEXT_DECORATION_FALLBACK"
	CodeInvalidGroupGrid        = "INVALID_GROUP_GRID"
	CodeGroupUnknownChild       = "GROUP_UNKNOWN_CHILD"
	CodeGroupForeignChild       = "GROUP_FOREIGN_CHILD"
)

// Issue is one structural finding.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	PageID   string   `json:"pageId,omitempty"`
	NodeID   string   `json:"nodeId,omitempty"`
	Path     string   `json:"path,omitempty"`
}

// Result is the outcome of Validate. Issues holds Errors followed by
// Warnings, in the deterministic order used for both lists.
type Result struct {
	OK       bool    `json:"ok"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Issues   []Issue `json:"issues"`
}

// Validate runs every structural check on doc.
func Validate(doc document.Document) Result {
	v := &validator{doc: doc}
	v.run()
	return v.result()
}

type validator struct {
	doc    document.Document
	issues []Issue
}

func (v *validator) add(sev Severity, code, pageID, nodeID, path, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		PageID:   pageID,
		NodeID:   nodeID,
		Path:     path,
	})
}

func (v *validator) run() {
	doc := v.doc

	if doc.RenderVersion != document.CurrentRenderVersion {
		v.add(SeverityError, CodeInvalidRenderVersion, "", "", "renderVersion",
			"render version %d is not supported (want %d)", doc.RenderVersion, document.CurrentRenderVersion)
	}

	pages := v.checkPages()
	nodesByPage := v.checkNodes(pages)
	v.checkDrawOrder(pages, nodesByPage)
}

// checkPages reports duplicate ids and bad sizes, and returns the index of
// the first page seen for each id.
func (v *validator) checkPages() map[string]int {
	pages := make(map[string]int, len(v.doc.Pages))
	for i, p := range v.doc.Pages {
		path := fmt.Sprintf("pages[%d]", i)
		if _, dup := pages[p.ID]; dup {
			v.add(SeverityError, CodePageDuplicateID, p.ID, "", path+".id", "duplicate page id %q", p.ID)
			continue
		}
		pages[p.ID] = i

		if _, err := geometry.LookupPreset(p.SizePreset); err != nil {
			v.add(SeverityError, CodeUnsupportedPagePreset, p.ID, "", path+".sizePreset",
				"page size preset %q is not supported", p.SizePreset)
		}
		if !positiveFinite(p.WidthPx) || !positiveFinite(p.HeightPx) {
			v.add(SeverityError, CodeInvalidPageSize, p.ID, "", path,
				"page size %vx%v must be positive and finite", p.WidthPx, p.HeightPx)
		}
	}
	return pages
}

// checkNodes runs identity, bounds, page and per-type checks, and returns the
// set of node ids belonging to each existing page.
func (v *validator) checkNodes(pages map[string]int) map[string]map[string]bool {
	assets := v.doc.AssetIndex()
	seen := make(map[string]bool, len(v.doc.Nodes))
	nodePage := make(map[string]string, len(v.doc.Nodes))
	nodesByPage := make(map[string]map[string]bool, len(pages))

	for i, n := range v.doc.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)

		if seen[n.ID] {
			v.add(SeverityError, CodeNodeDuplicateID, n.PageID, n.ID, path+".id", "duplicate node id %q", n.ID)
		} else {
			seen[n.ID] = true
			nodePage[n.ID] = n.PageID
		}

		if !finite(n.X) || !finite(n.Y) || !positiveFinite(n.W) || !positiveFinite(n.H) {
			v.add(SeverityError, CodeInvalidNodeBounds, n.PageID, n.ID, path,
				"node bounds (%v, %v, %v, %v) must be finite with positive size", n.X, n.Y, n.W, n.H)
		}

		if _, ok := pages[n.PageID]; !ok {
			v.add(SeverityError, CodeNodeMissingPage, n.PageID, n.ID, path+".pageId",
				"node %q references missing page %q", n.ID, n.PageID)
			continue
		}
		if nodesByPage[n.PageID] == nil {
			nodesByPage[n.PageID] = make(map[string]bool)
		}
		nodesByPage[n.PageID][n.ID] = true

		v.checkNodeType(n, path, assets)
	}

	// Group references need the complete node table.
	for i, n := range v.doc.Nodes {
		if n.Type != document.NodeGroup {
			continue
		}
		if _, ok := pages[n.PageID]; !ok {
			continue
		}
		for j, child := range n.ChildrenIDs {
			cpath := fmt.Sprintf("nodes[%d].childrenIds[%d]", i, j)
			childPage, ok := nodePage[child]
			switch {
			case !ok:
				v.add(SeverityWarning, CodeGroupUnknownChild, n.PageID, n.ID, cpath,
					"group %q references unknown node %q", n.ID, child)
			case childPage != n.PageID:
				v.add(SeverityWarning, CodeGroupForeignChild, n.PageID, n.ID, cpath,
					"group %q references node %q on page %q", n.ID, child, childPage)
			}
		}
	}

	return nodesByPage
}

func (v *validator) checkNodeType(n document.Node, path string, assets map[string]document.Asset) {
	switch n.Type {
	case document.NodeText:
		_, fallbacks := document.ResolveTextStyle(n.Style)
		for _, fb := range fallbacks {
			code := CodeTextFontFallback
			if fb.Field == "textDecoration" {
				code = CodeTextDecorationFallback
			}
			v.add(SeverityWarning, code, n.PageID, n.ID, path+".style."+fb.Field,
				"%s %q is not supported; using %q", fb.Field, fb.From, fb.To)
		}
	case document.NodeImage:
		if _, ok := document.ResolveImageURL(n, assets); !ok {
			v.add(SeverityError, CodeMissingImageSource, n.PageID, n.ID, path+".content",
				"image node %q has no usable image source", n.ID)
		}
	case document.NodeFrame:
		if _, ok := document.ResolveImageURL(n, assets); !ok {
			v.add(SeverityError, CodeMissingFrameImageSource, n.PageID, n.ID, path+".content",
				"frame node %q has no usable image source", n.ID)
		}
	case document.NodeGroup:
		if g := n.Content.Grid; g != nil && !validGridTracks(g.Rows, g.Cols) {
			v.add(SeverityError, CodeInvalidGroupGrid, n.PageID, n.ID, path+".content.grid",
				"group %q has a %dx%d grid; rows and columns must be between 1 and %d",
				n.ID, g.Rows, g.Cols, document.MaxGridTracks)
		}
	case document.NodeShape, document.NodeLine:
	default:
		v.add(SeverityError, CodeUnsupportedNodeType, n.PageID, n.ID, path+".type",
			"node type %q is not supported", n.Type)
		return
	}

	if n.Crop != nil {
		v.checkCrop(n, path)
	}
}

func (v *validator) checkCrop(n document.Node, path string) {
	z := n.Crop.Zoom
	if z == nil {
		z = n.Crop.Scale
	}
	if z != nil && !positiveFinite(*z) {
		v.add(SeverityError, CodeInvalidCropZoom, n.PageID, n.ID, path+".crop.zoom",
			"crop zoom %v must be positive and finite", *z)
		return
	}
	if _, err := geometry.Normalize(*n.Crop, geometry.DefaultCrop()); err != nil {
		v.add(SeverityError, CodeInvalidCrop, n.PageID, n.ID, path+".crop", "invalid crop: %v", err)
	}
}

// checkDrawOrder verifies that each page's drawOrder is exactly its node set.
func (v *validator) checkDrawOrder(pages map[string]int, nodesByPage map[string]map[string]bool) {
	for i, p := range v.doc.Pages {
		if pages[p.ID] != i {
			continue // duplicate page, already reported
		}
		owned := nodesByPage[p.ID]
		listed := make(map[string]bool, len(p.DrawOrder))

		for j, id := range p.DrawOrder {
			path := fmt.Sprintf("pages[%d].drawOrder[%d]", i, j)
			if listed[id] {
				v.add(SeverityError, CodeDrawOrderDuplicateNode, p.ID, id, path,
					"node %q appears more than once in draw order", id)
				continue
			}
			listed[id] = true
			if !owned[id] {
				v.add(SeverityError, CodeDrawOrderUnknownNode, p.ID, id, path,
					"draw order references node %q which is not on page %q", id, p.ID)
			}
		}

		for _, n := range v.doc.Nodes {
			if n.PageID == p.ID && owned[n.ID] && !listed[n.ID] {
				listed[n.ID] = true
				v.add(SeverityError, CodeDrawOrderMissingNode, p.ID, n.ID, fmt.Sprintf("pages[%d].drawOrder", i),
					"node %q is missing from the draw order of page %q", n.ID, p.ID)
			}
		}
	}
}

func (v *validator) result() Result {
	Sort(v.issues)
	res := Result{Issues: v.issues}
	for _, is := range v.issues {
		if is.Severity == SeverityError {
			res.Errors = append(res.Errors, is)
		} else {
			res.Warnings = append(res.Warnings, is)
		}
	}
	res.OK = len(res.Errors) == 0
	return res
}

// Sort orders issues errors first, then by page id, node id, code and message.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.PageID != b.PageID {
			return a.PageID < b.PageID
		}
		if a.NodeID != b.NodeID {
			return a.NodeID < b.NodeID
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positiveFinite(v float64) bool {
	return finite(v) && v > 0
}

func validGridTracks(rows, cols int) bool {
	return rows >= 1 && rows <= document.MaxGridTracks && cols >= 1 && cols <= document.MaxGridTracks
}
