package htmlrender

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/geometry"
)

// Sentinel errors for HTML rendering.
var (
	ErrUnsupportedNode = errors.New("unsupported node type")
	ErrMarkdown        = errors.New("markdown conversion failed")
)

// Defaults for nodes without explicit styling.
const (
	defaultStroke      = "#1f2933"
	defaultStrokeWidth = 1.0
	placeholderLabel   = "Image"
)

// Fragment is the input of a node renderer.
type Fragment struct {
	Node   document.Node
	Assets map[string]document.Asset
}

// RenderFunc maps a fragment to absolutely positioned HTML.
type RenderFunc func(Fragment) (string, error)

var renderers = map[document.NodeType]RenderFunc{
	document.NodeText:  Text,
	document.NodeImage: Image,
	document.NodeShape: Shape,
	document.NodeLine:  Line,
	document.NodeFrame: Frame,
	document.NodeGroup: Group,
}

// Node renders f with the renderer registered for its type.
func Node(f Fragment) (string, error) {
	render, ok := renderers[f.Node.Type]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedNode, f.Node.Type)
	}
	return render(f)
}

// markdown renders text runs. Raw HTML in the source is dropped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
		gmhtml.WithXHTML(),
	),
)

// Text renders a text node. Plain text is escaped and keeps its line
// breaks; markdown goes through goldmark.
func Text(f Fragment) (string, error) {
	n := f.Node
	s, _ := document.ResolveTextStyle(n.Style)

	var d declarations
	box(&d, n)
	d.set("overflow", "hidden")
	d.set("font-family", `"`+escapeCSSString(s.FontFamily)+`"`)
	d.set("font-size", px(s.FontSize))
	d.set("line-height", num(s.LineHeight))
	d.set("color", safeColor(s.Color, document.DefaultTextColor))
	d.set("font-weight", safeKeyword(s.FontWeight, fontWeights))
	d.set("font-style", safeKeyword(s.FontStyle, fontStyles))
	d.set("text-align", safeKeyword(s.TextAlign, textAligns))
	d.set("text-decoration", s.TextDecoration)

	var body string
	if strings.EqualFold(n.Content.Format, document.FormatMarkdown) {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(n.Content.Text), &buf); err != nil {
			return "", fmt.Errorf("%w: node %q: %v", ErrMarkdown, n.ID, err)
		}
		body = buf.String()
	} else {
		d.set("white-space", "pre-wrap")
		body = html.EscapeString(n.Content.Text)
	}

	return element("div", "node node-text", n.ID, d.String(), body), nil
}

// Image renders an image node through the crop presentation mapping.
// A node without a usable source renders an empty box.
func Image(f Fragment) (string, error) {
	n := f.Node

	var d declarations
	box(&d, n)
	d.set("overflow", "hidden")

	var body string
	if src, ok := document.ResolveImageURL(n, f.Assets); ok {
		body = img(src, n.Content.Alt, cropOf(n))
	}
	return element("div", "node node-image", n.ID, d.String(), body), nil
}

// Frame renders a bordered image container, or a placeholder label when no
// image resolves.
func Frame(f Fragment) (string, error) {
	n := f.Node

	var d declarations
	box(&d, n)
	d.set("overflow", "hidden")
	d.set("background", safeColor(n.Style.Fill, ""))
	border(&d, n.Style)

	var body string
	if src, ok := document.ResolveImageURL(n, f.Assets); ok {
		body = img(src, n.Content.Alt, cropOf(n))
	} else {
		label := strings.TrimSpace(n.Content.Label)
		if label == "" {
			label = placeholderLabel
		}
		body = `<div class="frame-placeholder" style="display:flex;align-items:center;justify-content:center;width:100%;height:100%;color:#7b8794;font-family:sans-serif;">` +
			html.EscapeString(label) + `</div>`
	}
	return element("div", "node node-frame", n.ID, d.String(), body), nil
}

// Shape renders a rectangle, rounded rectangle or ellipse.
func Shape(f Fragment) (string, error) {
	n := f.Node

	var d declarations
	box(&d, n)
	d.set("background", safeColor(n.Style.Fill, ""))
	if stroke := safeColor(n.Style.Stroke, ""); stroke != "" {
		d.set("border", px(strokeWidth(n.Style))+" solid "+stroke)
	}

	switch strings.ToLower(n.Content.Shape) {
	case "ellipse", "circle":
		d.set("border-radius", "50%")
	default:
		if r := n.Style.BorderRadius; r > 0 {
			d.set("border-radius", px(r))
		}
	}
	return element("div", "node node-shape", n.ID, d.String(), ""), nil
}

// Line renders a horizontal, vertical or diagonal stroke across the node box.
func Line(f Fragment) (string, error) {
	n := f.Node

	var d declarations
	box(&d, n)
	d.set("overflow", "visible")

	x1, y1, x2, y2 := 0.0, n.H/2, n.W, n.H/2
	switch strings.ToLower(n.Content.Orientation) {
	case "vertical":
		x1, y1, x2, y2 = n.W/2, 0, n.W/2, n.H
	case "diagonal-down", "diagonal":
		x1, y1, x2, y2 = 0, 0, n.W, n.H
	case "diagonal-up":
		x1, y1, x2, y2 = 0, n.H, n.W, 0
	}

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/></svg>`,
		num(n.W), num(n.H), num(x1), num(y1), num(x2), num(y2),
		html.EscapeString(safeColor(n.Style.Stroke, defaultStroke)), num(strokeWidth(n.Style)))
	return element("div", "node node-line", n.ID, d.String(), svg), nil
}

// Group renders the group's own decorative grid. Children are painted
// separately in flattened order. Tracks beyond document.MaxGridTracks are
// dropped.
func Group(f Fragment) (string, error) {
	n := f.Node

	var d declarations
	box(&d, n)
	d.set("background", safeColor(n.Style.Fill, ""))
	border(&d, n.Style)

	g := n.Content.Grid
	if g == nil || g.Rows <= 0 || g.Cols <= 0 {
		return element("div", "node node-group", n.ID, d.String(), ""), nil
	}
	rows := min(g.Rows, document.MaxGridTracks)
	cols := min(g.Cols, document.MaxGridTracks)

	d.set("display", "grid")
	d.set("grid-template-rows", fmt.Sprintf("repeat(%d, 1fr)", rows))
	d.set("grid-template-columns", fmt.Sprintf("repeat(%d, 1fr)", cols))
	if g.Gap > 0 {
		d.set("gap", px(g.Gap))
	}

	cell := `<div class="group-cell" style="border:1px dashed ` + html.EscapeString(safeColor(n.Style.Stroke, "#cbd2d9")) + `;"></div>`
	body := strings.Repeat(cell, rows*cols)
	return element("div", "node node-group", n.ID, d.String(), body), nil
}

// box writes the absolute position, size, rotation and opacity of n.
func box(d *declarations, n document.Node) {
	d.set("position", "absolute")
	d.set("box-sizing", "border-box")
	d.set("left", px(n.X))
	d.set("top", px(n.Y))
	d.set("width", px(n.W))
	d.set("height", px(n.H))
	if r := n.Rotation; r != 0 && !math.IsNaN(r) && !math.IsInf(r, 0) {
		d.set("transform", "rotate("+num(r)+"deg)")
		d.set("transform-origin", "center")
	}
	if n.Opacity != nil {
		d.set("opacity", num(math.Max(0, math.Min(1, *n.Opacity))))
	}
}

func border(d *declarations, s document.Style) {
	if c := safeColor(s.BorderColor, ""); c != "" && s.BorderWidth > 0 {
		d.set("border", px(s.BorderWidth)+" solid "+c)
	}
	if s.BorderRadius > 0 {
		d.set("border-radius", px(s.BorderRadius))
	}
}

func strokeWidth(s document.Style) float64 {
	if s.StrokeWidth > 0 && !math.IsInf(s.StrokeWidth, 0) {
		return s.StrokeWidth
	}
	return defaultStrokeWidth
}

// cropOf returns the normalized crop of n. Invalid crops fall back to the
// default; the structural validator reports them.
func cropOf(n document.Node) geometry.CropModel {
	if n.Crop == nil {
		return geometry.DefaultCrop()
	}
	m, err := geometry.Normalize(*n.Crop, geometry.DefaultCrop())
	if err != nil {
		return geometry.DefaultCrop()
	}
	return m
}

func img(src, alt string, crop geometry.CropModel) string {
	p := geometry.ImagePresentation(crop)
	pos := num(p.PositionX) + "% " + num(p.PositionY) + "%"

	var d declarations
	d.set("display", "block")
	d.set("width", "100%")
	d.set("height", "100%")
	d.set("object-fit", string(p.ObjectFit))
	d.set("object-position", pos)
	d.set("transform-origin", pos)
	if p.Scale != 1 || p.RotationDeg != 0 {
		d.set("transform", "scale("+num(p.Scale)+") rotate("+num(p.RotationDeg)+"deg)")
	}

	return `<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) +
		`" style="` + html.EscapeString(d.String()) + `">`
}

func element(tag, class, id, style, body string) string {
	return "<" + tag + ` class="` + class + `" data-node-id="` + html.EscapeString(id) +
		`" style="` + html.EscapeString(style) + `">` + body + "</" + tag + ">"
}
