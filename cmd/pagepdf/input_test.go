package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/rules"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// ---------------------------------------------------------------------------
// TestDefaultOutputPath
// ---------------------------------------------------------------------------

func TestDefaultOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "document.pdf"},
		{input: "book.json", want: "book.pdf"},
		{input: filepath.Join("out", "book.v2.json"), want: filepath.Join("out", "book.v2.pdf")},
		{input: "book", want: "book.pdf"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.input); got != tt.want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLoadAssetManifest
// ---------------------------------------------------------------------------

func TestLoadAssetManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    assetManifest
		wantErr bool
	}{
		{
			name:    "two assets",
			content: `[{"id":"a1","source":"upload","sourceUrl":"https://cdn.example.com/a1.png","width":3000},{"id":"a2","source":"stock","width":800}]`,
			want: assetManifest{
				"a1": {ID: "a1", Source: "upload", SourceURL: "https://cdn.example.com/a1.png", Width: 3000},
				"a2": {ID: "a2", Source: "stock", Width: 800},
			},
		},
		{name: "empty list", content: `[]`, want: assetManifest{}},
		{name: "missing id", content: `[{"source":"upload"}]`, wantErr: true},
		{name: "not an array", content: `{"id":"a1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loadAssetManifest(writeFile(t, "assets.json", tt.content))
			if tt.wantErr {
				if !errors.Is(err, ErrAssets) {
					t.Errorf("error = %v, want ErrAssets", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("manifest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadAssetManifest_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadAssetManifest(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, ErrAssets) {
		t.Errorf("error = %v, want ErrAssets", err)
	}
}

func TestAssetManifest_ResolveAsset(t *testing.T) {
	t.Parallel()

	m := assetManifest{"a1": {ID: "a1", Width: 10}}

	got, ok, err := m.ResolveAsset(context.Background(), "a1")
	if err != nil || !ok || got.Width != 10 {
		t.Errorf("ResolveAsset(a1) = %+v, %v, %v", got, ok, err)
	}
	if _, ok, _ := m.ResolveAsset(context.Background(), "a2"); ok {
		t.Error("ResolveAsset(a2) found an unknown asset")
	}
}

// ---------------------------------------------------------------------------
// TestReport
// ---------------------------------------------------------------------------

func TestLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pageID, nodeID string
		want           string
	}{
		{want: "document"},
		{pageID: "p1", want: "page p1"},
		{nodeID: "n1", want: "node n1"},
		{pageID: "p1", nodeID: "n1", want: "page p1, node n1"},
	}
	for _, tt := range tests {
		if got := location(tt.pageID, tt.nodeID); got != tt.want {
			t.Errorf("location(%q, %q) = %q, want %q", tt.pageID, tt.nodeID, got, tt.want)
		}
	}
}

func TestPrintPreflight(t *testing.T) {
	t.Parallel()

	t.Run("invalid document hides target rules", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printPreflight(&buf, pagepdf.Preflight{
			Target: pagepdf.TargetHardcopy,
			Structural: validate.Result{Errors: []validate.Issue{
				{Code: validate.CodeMissingImageSource, Message: "no source", PageID: "p1", NodeID: "img"},
			}},
		})

		out := buf.String()
		if !strings.Contains(out, validate.CodeMissingImageSource) || !strings.Contains(out, "page p1, node img") {
			t.Errorf("structural issue missing:\n%s", out)
		}
		if strings.Contains(out, "Target HARDCOPY") {
			t.Errorf("target rules printed for an invalid document:\n%s", out)
		}
	})

	t.Run("blocked", func(t *testing.T) {
		t.Parallel()

		issue := rules.Issue{Code: rules.CodeFrameOutsidePage, Blocking: true, PageID: "p2", FrameID: "f1", Message: "cut"}
		var buf bytes.Buffer
		printPreflight(&buf, pagepdf.Preflight{
			Target:     pagepdf.TargetHardcopy,
			Structural: validate.Result{OK: true},
			Rules:      rules.Result{Issues: []rules.Issue{issue}, BlockingIssues: []rules.Issue{issue}},
		})

		out := buf.String()
		for _, want := range []string{"valid (0 warnings)", "Target HARDCOPY", rules.CodeFrameOutsidePage, iconBlocked, "blocked: 1 blocking issues"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestPrintRenderSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printRenderSummary(&buf, "book.pdf", pagepdf.RenderMeta{
		PageCount:   4,
		Fingerprint: "fp-1",
		Cached:      true,
		Warnings:    []pagepdf.Warning{{Code: pagepdf.WarningPageCountChanged, Message: "expected 3 pages"}},
	})

	out := buf.String()
	for _, want := range []string{"book.pdf", "4 pages, cached, fp-1", pagepdf.WarningPageCountChanged} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "document") {
		t.Errorf("location printed for a document-level warning:\n%s", out)
	}
}
