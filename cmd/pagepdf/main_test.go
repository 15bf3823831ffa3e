package main

// Notes:
// - Commands are exercised through run() with in-memory stdin/stdout/stderr;
//   the exporter is replaced by fakeExporter for render so no browser starts.
// - preflight uses the real exporter: ValidateOnly never launches Chrome.

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/rules"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const validDocJSON = `{
  "renderVersion": 1,
  "exportTarget": "HARDCOPY",
  "bookMeta": {"storybookId": "book-1", "title": "The Fox"},
  "pages": [{"id": "p1", "orderIndex": 0, "sizePreset": "A4", "widthPx": 794, "heightPx": 1123,
             "margins": {"top": 44, "right": 44, "bottom": 44, "left": 44}, "drawOrder": ["txt"]}],
  "nodes": [{"id": "txt", "type": "text", "pageId": "p1", "x": 100, "y": 100, "w": 500, "h": 100,
             "content": {"text": "Once upon a time"}}],
  "assets": []
}`

const blockedDocJSON = `{
  "renderVersion": 1,
  "exportTarget": "HARDCOPY",
  "bookMeta": {"storybookId": "book-1"},
  "pages": [{"id": "p1", "orderIndex": 0, "sizePreset": "A4", "widthPx": 794, "heightPx": 1123,
             "margins": {"top": 44, "right": 44, "bottom": 44, "left": 44}, "drawOrder": ["txt"]}],
  "nodes": [{"id": "txt", "type": "text", "pageId": "p1", "x": 10, "y": 10, "w": 200, "h": 100,
             "content": {"text": "Too close"}}],
  "assets": []
}`

const invalidDocJSON = `{
  "renderVersion": 2,
  "exportTarget": "DIGITAL",
  "pages": [],
  "nodes": [],
  "assets": []
}`

const legacyJSON = `{
  "storybookId": "book-1",
  "storybookUpdatedAt": "2026-01-02T03:04:05Z",
  "exportTarget": "DIGITAL",
  "pages": [{"id": "p1", "orderIndex": 0, "sizePreset": "A4", "widthPx": 794, "heightPx": 1123, "version": 3}],
  "frames": [{"id": "f1", "pageId": "p1", "type": "TEXT", "x": 100, "y": 100, "w": 300, "h": 100,
              "zIndex": 0, "content": {"text": "Hi"}, "version": 2}]
}`

// fakeExporter records the Export call and returns a canned result.
type fakeExporter struct {
	res    *pagepdf.RenderResult
	err    error
	target pagepdf.Target
	fp     string
	closed bool
}

func (f *fakeExporter) ValidateOnly(context.Context, pagepdf.Document, pagepdf.Target, pagepdf.Settings) (pagepdf.Preflight, error) {
	return pagepdf.Preflight{}, nil
}

func (f *fakeExporter) Export(_ context.Context, _ pagepdf.Document, target pagepdf.Target, _ pagepdf.Settings, fp string) (*pagepdf.RenderResult, error) {
	f.target = target
	f.fp = fp
	return f.res, f.err
}

func (f *fakeExporter) Close() error {
	f.closed = true
	return nil
}

func okExporter() *fakeExporter {
	return &fakeExporter{res: &pagepdf.RenderResult{
		PDF:  []byte("%PDF-1.7 fake"),
		Meta: pagepdf.RenderMeta{PageCount: 1, Fingerprint: "abc123", RenderID: "r-1", Warnings: []pagepdf.Warning{}},
	}}
}

type testIO struct {
	env    *Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment reading stdin, with an empty process
// environment. A nil exp uses the real exporter.
func newTestEnv(stdin string, vars map[string]string, exp exporter) testIO {
	var stdout, stderr bytes.Buffer
	env := DefaultEnv()
	env.Stdin = strings.NewReader(stdin)
	env.Stdout = &stdout
	env.Stderr = &stderr
	env.Getenv = func(k string) string { return vars[k] }
	if exp != nil {
		env.NewExporter = func(...pagepdf.Option) exporter { return exp }
	}
	return testIO{env: env, stdout: &stdout, stderr: &stderr}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestValidateCommand
// ---------------------------------------------------------------------------

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantOut  string
	}{
		{name: "valid document", stdin: validDocJSON, args: []string{"validate"}, wantCode: ExitSuccess, wantOut: "valid (0 warnings)"},
		{name: "explicit stdin", stdin: validDocJSON, args: []string{"validate", "-"}, wantCode: ExitSuccess, wantOut: "valid"},
		{name: "invalid document", stdin: invalidDocJSON, args: []string{"validate"}, wantCode: ExitUsage, wantOut: "INVALID_RENDER_VERSION"},
		{name: "legacy contract", stdin: legacyJSON, args: []string{"validate"}, wantCode: ExitSuccess, wantOut: "valid"},
		{name: "json output", stdin: invalidDocJSON, args: []string{"validate", "--json"}, wantCode: ExitUsage, wantOut: `"ok": false`},
		{name: "empty input", stdin: "", args: []string{"validate"}, wantCode: ExitUsage},
		{name: "malformed JSON", stdin: "{", args: []string{"validate"}, wantCode: ExitUsage},
		{name: "missing file", args: []string{"validate", "/nonexistent/book.json"}, wantCode: ExitIO},
		{name: "too many args", args: []string{"validate", "a.json", "b.json"}, wantCode: ExitUsage},
		{name: "unknown flag", args: []string{"validate", "--bogus"}, wantCode: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tio := newTestEnv(tt.stdin, nil, nil)
			code := run(context.Background(), tt.args, tio.env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, tio.stdout, tio.stderr)
			}
			if tt.wantOut != "" && !strings.Contains(tio.stdout.String(), tt.wantOut) {
				t.Errorf("stdout missing %q:\n%s", tt.wantOut, tio.stdout)
			}
		})
	}
}

func TestValidateCommand_ReportedErrorsAreNotRepeated(t *testing.T) {
	t.Parallel()

	tio := newTestEnv(invalidDocJSON, nil, nil)
	run(context.Background(), []string{"validate"}, tio.env)

	if strings.Contains(tio.stderr.String(), "Error:") {
		t.Errorf("stderr repeats the report: %s", tio.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestPreflightCommand
// ---------------------------------------------------------------------------

func TestPreflightCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantOut  []string
	}{
		{
			name:     "exportable",
			stdin:    validDocJSON,
			args:     []string{"preflight"},
			wantCode: ExitSuccess,
			wantOut:  []string{"Target HARDCOPY", "exportable"},
		},
		{
			name:     "blocked on hardcopy",
			stdin:    blockedDocJSON,
			args:     []string{"preflight"},
			wantCode: ExitBlocked,
			wantOut:  []string{rules.CodeTextOutsideSafeArea, "blocked: 1 blocking issues"},
		},
		{
			name:     "digital never blocks",
			stdin:    blockedDocJSON,
			args:     []string{"preflight", "--target", "digital"},
			wantCode: ExitSuccess,
			wantOut:  []string{"Target DIGITAL", "exportable"},
		},
		{
			name:     "structural errors skip target rules",
			stdin:    invalidDocJSON,
			args:     []string{"preflight"},
			wantCode: ExitUsage,
			wantOut:  []string{"INVALID_RENDER_VERSION"},
		},
		{
			name:     "unknown target",
			stdin:    validDocJSON,
			args:     []string{"preflight", "-t", "SCREEN"},
			wantCode: ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tio := newTestEnv(tt.stdin, nil, nil)
			code := run(context.Background(), tt.args, tio.env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, tio.stdout, tio.stderr)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(tio.stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, tio.stdout)
				}
			}
		})
	}
}

func TestPreflightCommand_JSON(t *testing.T) {
	t.Parallel()

	tio := newTestEnv(blockedDocJSON, nil, nil)
	code := run(context.Background(), []string{"preflight", "--json"}, tio.env)
	if code != ExitBlocked {
		t.Fatalf("exit code = %d, want %d", code, ExitBlocked)
	}

	var pf pagepdf.Preflight
	if err := json.Unmarshal(tio.stdout.Bytes(), &pf); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, tio.stdout)
	}
	if pf.Target != pagepdf.TargetHardcopy || pf.Rules.OK || len(pf.Rules.BlockingIssues) != 1 {
		t.Errorf("preflight = %+v", pf)
	}
}

func TestPreflightCommand_AssetManifest(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(validDocJSON, `"drawOrder": ["txt"]`, `"drawOrder": ["txt", "img"]`, 1)
	doc = strings.Replace(doc, `"content": {"text": "Once upon a time"}}`,
		`"content": {"text": "Once upon a time"}},
             {"id": "img", "type": "image", "pageId": "p1", "x": 0, "y": 300, "w": 794, "h": 400, "content": {"assetId": "a1"}}`, 1)
	manifest := writeFile(t, "assets.json", `[{"id": "a1", "source": "upload", "sourceUrl": "https://cdn.example.com/a1.png", "width": 900}]`)

	without := newTestEnv(doc, nil, nil)
	if code := run(context.Background(), []string{"preflight"}, without.env); code != ExitUsage {
		t.Errorf("without manifest: exit code = %d, want %d", code, ExitUsage)
	}

	with := newTestEnv(doc, nil, nil)
	code := run(context.Background(), []string{"preflight", "--assets", manifest}, with.env)
	if code != ExitBlocked {
		t.Errorf("with manifest: exit code = %d, want %d (900px image blocks hardcopy)\n%s", code, ExitBlocked, with.stdout)
	}
	if !strings.Contains(with.stdout.String(), rules.CodeImageResolutionTooLow) {
		t.Errorf("stdout missing %s:\n%s", rules.CodeImageResolutionTooLow, with.stdout)
	}
}

// ---------------------------------------------------------------------------
// TestRenderCommand
// ---------------------------------------------------------------------------

func TestRenderCommand_WritesNextToInput(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "book.json", validDocJSON)
	exp := okExporter()
	tio := newTestEnv("", nil, exp)

	code := run(context.Background(), []string{"render", input}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}

	want := strings.TrimSuffix(input, ".json") + ".pdf"
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "%PDF-1.7 fake" {
		t.Errorf("output = %q", data)
	}
	if !exp.closed {
		t.Error("exporter not closed")
	}
	if exp.target != "" {
		t.Errorf("target = %q, want the document's own", exp.target)
	}
	if !strings.Contains(tio.stdout.String(), "1 pages, rendered, abc123") {
		t.Errorf("summary missing: %s", tio.stdout)
	}
}

func TestRenderCommand_Flags(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "nested", "out.pdf")
	exp := okExporter()
	exp.res.Meta.Warnings = []pagepdf.Warning{{Code: pagepdf.WarningTextOverflow, PageID: "p1", NodeID: "txt", Message: "text may not fit its frame"}}
	tio := newTestEnv(validDocJSON, nil, exp)

	code := run(context.Background(), []string{"render", "-o", out, "-t", "digital", "--fingerprint", "fp-1", "--cache", "off"}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}
	if exp.target != pagepdf.TargetDigital || exp.fp != "fp-1" {
		t.Errorf("Export(target=%q, fp=%q)", exp.target, exp.fp)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if !strings.Contains(tio.stdout.String(), pagepdf.WarningTextOverflow) {
		t.Errorf("warning not printed: %s", tio.stdout)
	}
}

func TestRenderCommand_Stdout(t *testing.T) {
	t.Parallel()

	tio := newTestEnv(validDocJSON, nil, okExporter())
	code := run(context.Background(), []string{"render", "-o", "-", "--json"}, tio.env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, tio.stderr)
	}
	if tio.stdout.String() != "%PDF-1.7 fake" {
		t.Errorf("stdout = %q, want only the PDF", tio.stdout)
	}
	if !strings.Contains(tio.stderr.String(), `"renderId": "r-1"`) {
		t.Errorf("metadata not on stderr: %s", tio.stderr)
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	t.Parallel()

	blocked := &pagepdf.BlockedError{Result: rules.Result{
		BlockingIssues: []rules.Issue{{Code: rules.CodeTextOutsideSafeArea, Target: pagepdf.TargetHardcopy, Blocking: true, PageID: "p1", FrameID: "txt"}},
	}}
	blocked.Result.Issues = blocked.Result.BlockingIssues

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr []string
	}{
		{name: "blocked", err: blocked, wantCode: ExitBlocked, wantStderr: []string{rules.CodeTextOutsideSafeArea, "pagepdf preflight"}},
		{name: "browser", err: pagepdf.ErrBrowserConnect, wantCode: ExitBrowser, wantStderr: []string{"failed to connect to browser"}},
		{name: "invalid document", err: &pagepdf.ValidationError{}, wantCode: ExitUsage, wantStderr: []string{"pagepdf validate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exp := &fakeExporter{err: tt.err}
			tio := newTestEnv(validDocJSON, nil, exp)
			code := run(context.Background(), []string{"render", "-o", filepath.Join(t.TempDir(), "out.pdf")}, tio.env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(tio.stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, tio.stderr)
				}
			}
			if !exp.closed {
				t.Error("exporter not closed on error")
			}
		})
	}
}

func TestRenderCommand_UnwritableOutput(t *testing.T) {
	t.Parallel()

	parent := writeFile(t, "file", "not a directory")
	tio := newTestEnv(validDocJSON, nil, okExporter())

	code := run(context.Background(), []string{"render", "-o", filepath.Join(parent, "out.pdf")}, tio.env)
	if code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(tio.stderr.String(), "writable") {
		t.Errorf("output hint missing: %s", tio.stderr)
	}
}

func TestRenderCommand_LegacyFingerprintMatchesHash(t *testing.T) {
	t.Parallel()

	exp := okExporter()
	render := newTestEnv(legacyJSON, nil, exp)
	if code := run(context.Background(), []string{"render", "-o", filepath.Join(t.TempDir(), "out.pdf")}, render.env); code != ExitSuccess {
		t.Fatalf("render exit code = %d, stderr: %s", code, render.stderr)
	}

	hash := newTestEnv(legacyJSON, nil, nil)
	if code := run(context.Background(), []string{"hash"}, hash.env); code != ExitSuccess {
		t.Fatalf("hash exit code = %d, stderr: %s", code, hash.stderr)
	}

	if got := strings.TrimSpace(hash.stdout.String()); exp.fp != got {
		t.Errorf("render fingerprint %q != hash %q", exp.fp, got)
	}
}

// ---------------------------------------------------------------------------
// TestConfigFlag
// ---------------------------------------------------------------------------

func TestConfigFlag(t *testing.T) {
	t.Parallel()

	t.Run("config target applies", func(t *testing.T) {
		t.Parallel()

		cfg := writeFile(t, "pagepdf.yaml", "export:\n  target: digital\n")
		tio := newTestEnv(blockedDocJSON, nil, nil)
		code := run(context.Background(), []string{"preflight", "--config", cfg}, tio.env)
		if code != ExitSuccess {
			t.Errorf("exit code = %d, want %d\n%s", code, ExitSuccess, tio.stdout)
		}
	})

	t.Run("config from environment", func(t *testing.T) {
		t.Parallel()

		cfg := writeFile(t, "pagepdf.toml", "[export]\ntarget = \"DIGITAL\"\n")
		tio := newTestEnv(blockedDocJSON, map[string]string{configEnvVar: cfg}, nil)
		if code := run(context.Background(), []string{"preflight"}, tio.env); code != ExitSuccess {
			t.Errorf("exit code = %d, want %d", code, ExitSuccess)
		}
	})

	t.Run("flag wins over config", func(t *testing.T) {
		t.Parallel()

		cfg := writeFile(t, "pagepdf.yaml", "export:\n  target: digital\n")
		tio := newTestEnv(blockedDocJSON, nil, nil)
		if code := run(context.Background(), []string{"preflight", "-c", cfg, "-t", "HARDCOPY"}, tio.env); code != ExitBlocked {
			t.Errorf("exit code = %d, want %d", code, ExitBlocked)
		}
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		tio := newTestEnv(validDocJSON, nil, nil)
		code := run(context.Background(), []string{"validate", "--config", "/nonexistent/pagepdf.yaml"}, tio.env)
		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(tio.stderr.String(), "hint: use --config") {
			t.Errorf("hint missing: %s", tio.stderr)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		cfg := writeFile(t, "bad.yaml", "render:\n  maxTabs: 500\n")
		tio := newTestEnv(validDocJSON, nil, nil)
		if code := run(context.Background(), []string{"validate", "--config", cfg}, tio.env); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestVerboseLogging
// ---------------------------------------------------------------------------

func TestVerboseLogging(t *testing.T) {
	t.Parallel()

	quiet := newTestEnv(legacyJSON, nil, nil)
	run(context.Background(), []string{"validate"}, quiet.env)
	if strings.Contains(quiet.stderr.String(), "legacy contract converted") {
		t.Error("debug message logged without --verbose")
	}

	verbose := newTestEnv(legacyJSON, nil, nil)
	run(context.Background(), []string{"validate", "-v"}, verbose.env)
	if !strings.Contains(verbose.stderr.String(), "legacy contract converted") {
		t.Errorf("debug message missing with --verbose: %s", verbose.stderr)
	}
}

func TestVerboseRequested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{args: nil, want: false},
		{args: []string{"render", "book.json"}, want: false},
		{args: []string{"render", "-v"}, want: true},
		{args: []string{"--verbose", "doctor"}, want: true},
	}
	for _, tt := range tests {
		if got := verboseRequested(tt.args); got != tt.want {
			t.Errorf("verboseRequested(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
