package document

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func legacyFixture() LegacyContract {
	return LegacyContract{
		StorybookID:        "book-1",
		StorybookUpdatedAt: "2026-01-02T03:04:05Z",
		ExportTarget:       TargetHardcopy,
		Pages: []LegacyPage{
			{ID: "p2", OrderIndex: 1, SizePreset: "BOOK_6x9"},
			{ID: "p1", OrderIndex: 0, SizePreset: "A4", WidthPx: 800, HeightPx: 1100},
		},
		Frames: []LegacyFrame{
			{ID: "c", PageID: "p1", Type: "TEXT", W: 10, H: 10, ZIndex: 2},
			{ID: "b", PageID: "p1", Type: "IMAGE", W: 10, H: 10, ZIndex: 1},
			{ID: "a", PageID: "p1", Type: "SHAPE", W: 10, H: 10, ZIndex: 2},
			{ID: "g", PageID: "p2", Type: "GROUP", W: 10, H: 10, Content: map[string]any{"childrenIds": []any{"x", "y"}}},
			{ID: "x", PageID: "p2", Type: "LINE", W: 10, H: 10, ZIndex: 3},
			{ID: "y", PageID: "p2", Type: "FRAME", W: 10, H: 10, ZIndex: 3},
		},
	}
}

func TestToRenderable_DrawOrderByZIndexThenID(t *testing.T) {
	t.Parallel()

	doc := ToRenderable(legacyFixture())

	want := map[string][]string{
		"p1": {"b", "a", "c"},
		"p2": {"g", "x", "y"},
	}
	for _, p := range doc.Pages {
		if diff := cmp.Diff(want[p.ID], p.DrawOrder); diff != "" {
			t.Errorf("page %s draw order mismatch (-want +got):\n%s", p.ID, diff)
		}
	}
}

func TestToRenderable_DrawOrderBijection(t *testing.T) {
	t.Parallel()

	doc := ToRenderable(legacyFixture())

	for _, p := range doc.Pages {
		var nodeIDs []string
		for _, n := range doc.NodesOnPage(p.ID) {
			nodeIDs = append(nodeIDs, n.ID)
		}
		order := append([]string(nil), p.DrawOrder...)
		sort.Strings(nodeIDs)
		sort.Strings(order)
		if diff := cmp.Diff(nodeIDs, order); diff != "" {
			t.Errorf("page %s: drawOrder is not the page node set (-nodes +drawOrder):\n%s", p.ID, diff)
		}
	}
}

func TestToRenderable_MapsTypesAndPages(t *testing.T) {
	t.Parallel()

	doc := ToRenderable(legacyFixture())

	if doc.RenderVersion != CurrentRenderVersion {
		t.Errorf("RenderVersion = %d, want %d", doc.RenderVersion, CurrentRenderVersion)
	}
	if doc.BookMeta.StorybookID != "book-1" || doc.BookMeta.UpdatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("BookMeta = %+v", doc.BookMeta)
	}

	types := map[string]NodeType{}
	for _, n := range doc.Nodes {
		types[n.ID] = n.Type
	}
	wantTypes := map[string]NodeType{"a": NodeShape, "b": NodeImage, "c": NodeText, "g": NodeGroup, "x": NodeLine, "y": NodeFrame}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("node types mismatch (-want +got):\n%s", diff)
	}

	p2, _ := doc.PageByID("p2")
	if p2.WidthPx != 576 || p2.HeightPx != 864 {
		t.Errorf("p2 size = %vx%v, want preset 576x864", p2.WidthPx, p2.HeightPx)
	}
	if p2.Margins.Top != DefaultMarginPx {
		t.Errorf("p2 margins = %+v, want default %d", p2.Margins, DefaultMarginPx)
	}
	p1, _ := doc.PageByID("p1")
	if p1.WidthPx != 800 || p1.HeightPx != 1100 {
		t.Errorf("p1 size = %vx%v, want explicit 800x1100", p1.WidthPx, p1.HeightPx)
	}
}

func TestChildrenFromContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content map[string]any
		want    []string
	}{
		{name: "strings", content: map[string]any{"childrenIds": []any{"a", "b"}}, want: []string{"a", "b"}},
		{name: "mixed entries rejected", content: map[string]any{"childrenIds": []any{"a", 3.0}}, want: nil},
		{name: "not a list", content: map[string]any{"childrenIds": "a"}, want: nil},
		{name: "missing", content: map[string]any{}, want: nil},
		{name: "nil content", content: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, childrenFromContent(tt.content)); diff != "" {
				t.Errorf("childrenFromContent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToRenderable_StyleAndContentFromJSON(t *testing.T) {
	t.Parallel()

	raw := `{
		"storybookId": "b",
		"exportTarget": "DIGITAL",
		"pages": [{"id": "p", "orderIndex": 0, "sizePreset": "A4"}],
		"frames": [{
			"id": "t", "pageId": "p", "type": "TEXT", "x": 1, "y": 2, "w": 3, "h": 4, "zIndex": 0,
			"style": {"fontFamily": "Lora", "fontSize": 18, "fontWeight": 700, "color": "#000"},
			"content": {"text": "Once upon a time", "imageUrl": "https://cdn.example.com/a.png"}
		}]
	}`
	var c LegacyContract
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	n := ToRenderable(c).Nodes[0]

	wantStyle := Style{FontFamily: "Lora", FontSize: 18, FontWeight: "700", Color: "#000"}
	if diff := cmp.Diff(wantStyle, n.Style); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}
	if n.Content.Text != "Once upon a time" || n.Content.URL != "https://cdn.example.com/a.png" {
		t.Errorf("content = %+v", n.Content)
	}
}
