package rules

import (
	"math"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-pagepdf/internal/document"
)

// EstimateOverflow reports whether text is likely to overflow a box of the
// given size. It approximates glyph width as 0.55em and has no access to
// real font metrics, so it both under- and over-reports for non-Latin
// scripts and variable-width fonts.
//
// Text length is counted in runes after NFC normalization.
func EstimateOverflow(text string, widthPx, heightPx, fontSize, lineHeight float64) bool {
	n := utf8.RuneCountInString(norm.NFC.String(text))
	if n == 0 {
		return false
	}

	charsPerLine := math.Max(8, math.Floor(widthPx/math.Max(8, fontSize*0.55)))
	lines := math.Ceil(float64(n) / charsPerLine)
	maxLines := math.Max(1, math.Floor(heightPx/math.Max(10, fontSize*lineHeight)))
	return lines > maxLines
}

// Overflow is one text node estimated to overflow its box.
type Overflow struct {
	PageID string `json:"pageId"`
	NodeID string `json:"nodeId"`
}

// DetectOverflow runs EstimateOverflow over every text node of doc, in
// document order. Font size and line height fall back to the text defaults.
func DetectOverflow(doc document.Document) []Overflow {
	var out []Overflow
	for _, n := range doc.Nodes {
		if n.Type != document.NodeText {
			continue
		}
		if nodeOverflows(n) {
			out = append(out, Overflow{PageID: n.PageID, NodeID: n.ID})
		}
	}
	return out
}

func nodeOverflows(n document.Node) bool {
	style, _ := document.ResolveTextStyle(n.Style)
	return EstimateOverflow(n.Content.Text, n.W, n.H, style.FontSize, style.LineHeight)
}
