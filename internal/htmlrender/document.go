// Package htmlrender turns a renderable document into printable HTML.
//
// Every node type has a pure renderer producing an absolutely positioned
// fragment. BuildDocument assembles the fragments of every page, painted in
// the order computed by the layout package.
package htmlrender

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
	"github.com/alnah/go-pagepdf/internal/layout"
)

const baseCSS = `
* { margin: 0; padding: 0; }
html, body { background: #ffffff; }
body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.page { position: relative; overflow: hidden; break-after: page; page-break-after: always; }
.page:last-child { break-after: auto; page-break-after: auto; }
.node-text p { margin: 0; }
`

// PageSizeCSS returns the CSS @page size for a preset. A4 and US letter use
// their named sizes; other presets are given in inches. Unknown presets fall
// back to the pixel size.
func PageSizeCSS(preset geometry.SizePreset, widthPx, heightPx float64) string {
	switch preset {
	case geometry.PresetA4:
		return "A4"
	case geometry.PresetUSLetter:
		return "letter"
	}
	if spec, err := geometry.LookupPreset(preset); err == nil {
		return num(spec.WidthIn) + "in " + num(spec.HeightIn) + "in"
	}
	return px(widthPx) + " " + px(heightPx)
}

// SortedPages returns the pages of doc ordered by (orderIndex, id). Only the
// first page of a duplicated id is kept.
func SortedPages(doc document.Document) []document.Page {
	seen := make(map[string]bool, len(doc.Pages))
	pages := make([]document.Page, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		pages = append(pages, p)
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].OrderIndex != pages[j].OrderIndex {
			return pages[i].OrderIndex < pages[j].OrderIndex
		}
		return pages[i].ID < pages[j].ID
	})
	return pages
}

// BuildDocument renders doc as a standalone HTML5 document with one section
// per page.
func BuildDocument(doc document.Document) (string, error) {
	pages := SortedPages(doc)
	assets := doc.AssetIndex()

	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html")
	if lang := strings.TrimSpace(doc.BookMeta.Language); lang != "" {
		buf.WriteString(` lang="` + html.EscapeString(lang) + `"`)
	}
	buf.WriteString(">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(doc.BookMeta.Title))
	buf.WriteString("</title>\n<style>")
	buf.WriteString(baseCSS)
	if len(pages) > 0 {
		first := pages[0]
		fmt.Fprintf(&buf, "@page { size: %s; margin: 0; }\n", PageSizeCSS(first.SizePreset, first.WidthPx, first.HeightPx))
	}
	buf.WriteString("</style>\n</head>\n<body>\n")

	for _, p := range pages {
		if err := writePage(&buf, doc, p, assets); err != nil {
			return "", err
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.String(), nil
}

func writePage(buf *strings.Builder, doc document.Document, p document.Page, assets map[string]document.Asset) error {
	var d declarations
	d.set("width", px(p.WidthPx))
	d.set("height", px(p.HeightPx))
	d.set("background", safeColor(p.Background, "#ffffff"))

	buf.WriteString(`<section class="page" data-page-id="` + html.EscapeString(p.ID) +
		`" style="` + html.EscapeString(d.String()) + "\">\n")

	for _, item := range layout.FlattenPage(doc, p.ID) {
		frag, err := Node(Fragment{Node: item.Node, Assets: assets})
		if err != nil {
			return err
		}
		buf.WriteString(frag)
		buf.WriteByte('\n')
	}

	buf.WriteString("</section>\n")
	return nil
}
