package pagepdf

import (
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
	"github.com/alnah/go-pagepdf/internal/htmlrender"
)

// renderSettings are the print options that differ per export target.
type renderSettings struct {
	PrintBackground   bool
	Scale             float64
	PreferCSSPageSize bool
}

// targetRenderSettings is looked up by target; unknown targets use the
// digital row.
var targetRenderSettings = map[document.Target]renderSettings{
	document.TargetDigital:  {PrintBackground: true, Scale: 1},
	document.TargetHardcopy: {PrintBackground: true, Scale: 1, PreferCSSPageSize: true},
}

func settingsFor(t document.Target) renderSettings {
	if s, ok := targetRenderSettings[t]; ok {
		return s
	}
	return targetRenderSettings[document.TargetDigital]
}

// paperFormat is the physical sheet a document prints on. Name is set for
// the formats Chrome knows by name.
type paperFormat struct {
	Name     string
	WidthIn  float64
	HeightIn float64
}

// paperFor picks the sheet from the first page in print order: A4 and
// US_LETTER map to their named formats, book presets to explicit inches.
// Pages without a known preset use their pixel size; an empty document
// prints on A4.
func paperFor(doc document.Document) paperFormat {
	pages := htmlrender.SortedPages(doc)
	if len(pages) == 0 {
		return paperFormat{Name: "A4", WidthIn: 8.27, HeightIn: 11.69}
	}
	first := pages[0]

	spec, err := geometry.LookupPreset(first.SizePreset)
	if err != nil {
		return paperFormat{WidthIn: geometry.PxToIn(first.WidthPx), HeightIn: geometry.PxToIn(first.HeightPx)}
	}
	switch first.SizePreset {
	case geometry.PresetA4:
		return paperFormat{Name: "A4", WidthIn: spec.WidthIn, HeightIn: spec.HeightIn}
	case geometry.PresetUSLetter:
		return paperFormat{Name: "Letter", WidthIn: spec.WidthIn, HeightIn: spec.HeightIn}
	default:
		return paperFormat{WidthIn: spec.WidthIn, HeightIn: spec.HeightIn}
	}
}

// printOptions builds the Chrome print request for doc and target. Page
// margins are part of the layout, so the sheet has none.
func printOptions(doc document.Document, target document.Target) *proto.PagePrintToPDF {
	paper := paperFor(doc)
	s := settingsFor(target)
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(paper.WidthIn),
		PaperHeight:       floatPtr(paper.HeightIn),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		Scale:             floatPtr(s.Scale),
		PrintBackground:   s.PrintBackground,
		PreferCSSPageSize: s.PreferCSSPageSize,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
