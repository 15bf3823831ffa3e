package document

import (
	"github.com/alnah/go-pagepdf/internal/geometry"
)

// CurrentRenderVersion is the only contract version this library accepts.
const CurrentRenderVersion = 1

// Target is the export destination of a document.
type Target string

const (
	TargetDigital  Target = "DIGITAL"
	TargetHardcopy Target = "HARDCOPY"
)

// Valid reports whether t is a known export target.
func (t Target) Valid() bool {
	return t == TargetDigital || t == TargetHardcopy
}

// BoxMode returns the page box mode matching the target.
func (t Target) BoxMode() geometry.BoxMode {
	if t == TargetHardcopy {
		return geometry.BoxHardcopy
	}
	return geometry.BoxDigital
}

// NodeType is the discriminant of the closed node variant set.
type NodeType string

const (
	NodeText  NodeType = "text"
	NodeImage NodeType = "image"
	NodeShape NodeType = "shape"
	NodeLine  NodeType = "line"
	NodeFrame NodeType = "frame"
	NodeGroup NodeType = "group"
)

// Known reports whether t is one of the six supported node types.
func (t NodeType) Known() bool {
	switch t {
	case NodeText, NodeImage, NodeShape, NodeLine, NodeFrame, NodeGroup:
		return true
	}
	return false
}

// Document is the versioned, normalized representation consumed by
// validation and rendering.
type Document struct {
	RenderVersion int      `json:"renderVersion"`
	ExportTarget  Target   `json:"exportTarget"`
	BookMeta      BookMeta `json:"bookMeta"`
	Pages         []Page   `json:"pages"`
	Nodes         []Node   `json:"nodes"`
	Assets        []Asset  `json:"assets"`
}

// BookMeta identifies the book a document was assembled from.
type BookMeta struct {
	StorybookID string `json:"storybookId"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Page is one physical page and the paint order of its nodes.
type Page struct {
	ID         string              `json:"id"`
	OrderIndex int                 `json:"orderIndex"`
	SizePreset geometry.SizePreset `json:"sizePreset"`
	WidthPx    float64             `json:"widthPx"`
	HeightPx   float64             `json:"heightPx"`
	Margins    geometry.Margins    `json:"margins"`
	Background string              `json:"background,omitempty"`
	DrawOrder  []string            `json:"drawOrder"`
}

// Node is one positioned element. Type selects which Style and Content
// fields are meaningful.
type Node struct {
	ID          string            `json:"id"`
	Type        NodeType          `json:"type"`
	PageID      string            `json:"pageId"`
	X           float64           `json:"x"`
	Y           float64           `json:"y"`
	W           float64           `json:"w"`
	H           float64           `json:"h"`
	Rotation    float64           `json:"rotation,omitempty"`
	Opacity     *float64          `json:"opacity,omitempty"`
	Locked      bool              `json:"locked,omitempty"`
	Style       Style             `json:"style"`
	Content     Content           `json:"content"`
	Crop        *geometry.RawCrop `json:"crop,omitempty"`
	ChildrenIDs []string          `json:"childrenIds,omitempty"`
}

// Bounds returns the node rectangle in page pixels.
func (n Node) Bounds() geometry.Box {
	return geometry.Box{X: n.X, Y: n.Y, W: n.W, H: n.H}
}

// Style holds presentation attributes for every node type.
type Style struct {
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	LineHeight     float64 `json:"lineHeight,omitempty"`
	Color          string  `json:"color,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	Fill           string  `json:"fill,omitempty"`
	Stroke         string  `json:"stroke,omitempty"`
	StrokeWidth    float64 `json:"strokeWidth,omitempty"`
	BorderColor    string  `json:"borderColor,omitempty"`
	BorderWidth    float64 `json:"borderWidth,omitempty"`
	BorderRadius   float64 `json:"borderRadius,omitempty"`
}

// Text formats.
const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

// Content holds the payload of a node.
type Content struct {
	Text        string `json:"text,omitempty"`
	Format      string `json:"format,omitempty"`
	AssetID     string `json:"assetId,omitempty"`
	URL         string `json:"url,omitempty"`
	Alt         string `json:"alt,omitempty"`
	Label       string `json:"label,omitempty"`
	Shape       string `json:"shape,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	Grid        *Grid  `json:"grid,omitempty"`
}

// MaxGridTracks caps the rows and the columns of a group grid.
const MaxGridTracks = 64

// Grid is the decorative cell layout of a group. Rows and Cols range over
// [1, MaxGridTracks].
type Grid struct {
	Rows int     `json:"rows"`
	Cols int     `json:"cols"`
	Gap  float64 `json:"gap,omitempty"`
}

// Asset is a resolved image binary.
type Asset struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	License   string `json:"license,omitempty"`
}

// PageByID returns the page with the given id.
func (d Document) PageByID(id string) (Page, bool) {
	for _, p := range d.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// AssetIndex maps asset ids to assets. The first asset wins on duplicate ids.
func (d Document) AssetIndex() map[string]Asset {
	idx := make(map[string]Asset, len(d.Assets))
	for _, a := range d.Assets {
		if _, ok := idx[a.ID]; !ok {
			idx[a.ID] = a
		}
	}
	return idx
}

// NodesOnPage returns the nodes whose PageID equals pageID, in document order.
func (d Document) NodesOnPage(pageID string) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.PageID == pageID {
			out = append(out, n)
		}
	}
	return out
}
