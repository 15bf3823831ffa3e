package document

import (
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-pagepdf/internal/geometry"
)

// DefaultMarginPx is applied to legacy pages that carry no margins.
const DefaultMarginPx = 44

// LegacyContract is the frame-based export contract produced by older editors.
type LegacyContract struct {
	StorybookID        string        `json:"storybookId"`
	StorybookUpdatedAt string        `json:"storybookUpdatedAt,omitempty"`
	Title              string        `json:"title,omitempty"`
	Author             string        `json:"author,omitempty"`
	Language           string        `json:"language,omitempty"`
	ExportTarget       Target        `json:"exportTarget"`
	Pages              []LegacyPage  `json:"pages"`
	Frames             []LegacyFrame `json:"frames"`
	Assets             []Asset       `json:"assets,omitempty"`
}

// LegacyPage is a page of the legacy contract.
type LegacyPage struct {
	ID         string              `json:"id"`
	OrderIndex int                 `json:"orderIndex"`
	SizePreset geometry.SizePreset `json:"sizePreset"`
	WidthPx    float64             `json:"widthPx,omitempty"`
	HeightPx   float64             `json:"heightPx,omitempty"`
	Margins    *geometry.Margins   `json:"margins,omitempty"`
	Background string              `json:"background,omitempty"`
	Version    int                 `json:"version,omitempty"`
	UpdatedAt  string              `json:"updatedAt,omitempty"`
}

// LegacyFrame is a loosely typed positioned element of the legacy contract.
type LegacyFrame struct {
	ID        string            `json:"id"`
	PageID    string            `json:"pageId"`
	Type      string            `json:"type"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	W         float64           `json:"w"`
	H         float64           `json:"h"`
	Rotation  float64           `json:"rotation,omitempty"`
	Opacity   *float64          `json:"opacity,omitempty"`
	Locked    bool              `json:"locked,omitempty"`
	ZIndex    int               `json:"zIndex"`
	Style     map[string]any    `json:"style,omitempty"`
	Content   map[string]any    `json:"content,omitempty"`
	Crop      *geometry.RawCrop `json:"crop,omitempty"`
	Version   int               `json:"version,omitempty"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
}

// ToRenderable converts a legacy contract into a Document. Each page's draw
// order is its frames sorted by z-index, ties broken by id, so equal inputs
// always produce the same paint order.
func ToRenderable(c LegacyContract) Document {
	doc := Document{
		RenderVersion: CurrentRenderVersion,
		ExportTarget:  c.ExportTarget,
		BookMeta: BookMeta{
			StorybookID: c.StorybookID,
			Title:       c.Title,
			Author:      c.Author,
			Language:    c.Language,
			UpdatedAt:   c.StorybookUpdatedAt,
		},
		Pages:  make([]Page, 0, len(c.Pages)),
		Nodes:  make([]Node, 0, len(c.Frames)),
		Assets: append([]Asset(nil), c.Assets...),
	}

	framesByPage := make(map[string][]LegacyFrame)
	for _, f := range c.Frames {
		framesByPage[f.PageID] = append(framesByPage[f.PageID], f)
		doc.Nodes = append(doc.Nodes, frameToNode(f))
	}

	for _, lp := range c.Pages {
		frames := framesByPage[lp.ID]
		sort.SliceStable(frames, func(i, j int) bool {
			if frames[i].ZIndex != frames[j].ZIndex {
				return frames[i].ZIndex < frames[j].ZIndex
			}
			return frames[i].ID < frames[j].ID
		})
		order := make([]string, 0, len(frames))
		for _, f := range frames {
			order = append(order, f.ID)
		}
		doc.Pages = append(doc.Pages, legacyPageToPage(lp, order))
	}

	return doc
}

func legacyPageToPage(lp LegacyPage, drawOrder []string) Page {
	p := Page{
		ID:         lp.ID,
		OrderIndex: lp.OrderIndex,
		SizePreset: lp.SizePreset,
		WidthPx:    lp.WidthPx,
		HeightPx:   lp.HeightPx,
		Margins:    geometry.UniformMargins(DefaultMarginPx),
		Background: lp.Background,
		DrawOrder:  drawOrder,
	}
	if lp.Margins != nil {
		p.Margins = *lp.Margins
	}
	if spec, err := geometry.LookupPreset(lp.SizePreset); err == nil {
		if p.WidthPx <= 0 {
			p.WidthPx = spec.WidthPx()
		}
		if p.HeightPx <= 0 {
			p.HeightPx = spec.HeightPx()
		}
	}
	return p
}

func frameToNode(f LegacyFrame) Node {
	n := Node{
		ID:       f.ID,
		Type:     NodeType(strings.ToLower(f.Type)),
		PageID:   f.PageID,
		X:        f.X,
		Y:        f.Y,
		W:        f.W,
		H:        f.H,
		Rotation: f.Rotation,
		Opacity:  f.Opacity,
		Locked:   f.Locked,
		Style:    styleFromMap(f.Style),
		Content:  contentFromMap(f.Content),
		Crop:     f.Crop,
	}
	if n.Type == NodeGroup {
		n.ChildrenIDs = childrenFromContent(f.Content)
	}
	return n
}

// childrenFromContent returns content.childrenIds only when it is a list of
// strings; anything else yields no children.
func childrenFromContent(content map[string]any) []string {
	raw, ok := content["childrenIds"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

func styleFromMap(m map[string]any) Style {
	return Style{
		FontFamily:     str(m, "fontFamily"),
		FontSize:       num(m, "fontSize"),
		FontWeight:     scalar(m, "fontWeight"),
		FontStyle:      str(m, "fontStyle"),
		LineHeight:     num(m, "lineHeight"),
		Color:          str(m, "color"),
		TextAlign:      str(m, "textAlign"),
		TextDecoration: str(m, "textDecoration"),
		Fill:           str(m, "fill"),
		Stroke:         str(m, "stroke"),
		StrokeWidth:    num(m, "strokeWidth"),
		BorderColor:    str(m, "borderColor"),
		BorderWidth:    num(m, "borderWidth"),
		BorderRadius:   num(m, "borderRadius"),
	}
}

func contentFromMap(m map[string]any) Content {
	c := Content{
		Text:        str(m, "text"),
		Format:      str(m, "format"),
		AssetID:     str(m, "assetId"),
		URL:         str(m, "url"),
		Alt:         str(m, "alt"),
		Label:       str(m, "label"),
		Shape:       str(m, "shape"),
		Orientation: str(m, "orientation"),
	}
	if c.URL == "" {
		c.URL = str(m, "imageUrl")
	}
	if g, ok := m["grid"].(map[string]any); ok {
		c.Grid = &Grid{
			Rows: int(num(g, "rows")),
			Cols: int(num(g, "cols")),
			Gap:  num(g, "gap"),
		}
	}
	return c
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// scalar reads a value that older editors stored either as a string or a number.
func scalar(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
