package fileutil_test

// Notes:
// - The WriteString and Close error branches of WriteTempFile are not tested:
//   triggering disk write failures is platform-specific.
// - TestWriteTempFile_CreateTempError changes TMPDIR and cannot run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-pagepdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "html", extension: "html"},
		{name: "pdf", extension: "pdf"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: "..\\windows", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary HTML files for the browser
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "document", content: `<!doctype html><section data-page-id="p1"></section>`},
		{name: "empty", content: ""},
		{name: "unicode", content: "<p>Il était une fois</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, cleanup, err := fileutil.WriteTempFile(tt.content, "html")
			if err != nil {
				t.Fatalf("WriteTempFile() error = %v", err)
			}
			defer cleanup()

			if !strings.HasPrefix(filepath.Base(path), fileutil.TempPrefix) {
				t.Errorf("path %q does not start with %q", path, fileutil.TempPrefix)
			}
			if !strings.HasSuffix(path, ".html") {
				t.Errorf("path %q does not end in .html", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading temp file: %v", err)
			}
			if string(data) != tt.content {
				t.Errorf("content = %q, want %q", data, tt.content)
			}
		})
	}
}

func TestWriteTempFile_Cleanup(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("x", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("x", "../html")
	if cleanup != nil {
		t.Error("cleanup returned alongside an error")
	}
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("TMPDIR is ignored on windows")
	}
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, _, err := fileutil.WriteTempFile("x", "html")
	if err == nil || !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("error = %v, want error containing 'creating temp file'", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - PDF output files
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "book.pdf")

	if err := fileutil.WriteFileAtomic(path, []byte("%PDF-1.7 first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("%PDF-1.7 second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "%PDF-1.7 second" {
		t.Errorf("content = %q, want the second write", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output file", len(entries))
	}
}

func TestWriteFileAtomic_ParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := fileutil.WriteFileAtomic(filepath.Join(blocker, "book.pdf"), []byte("x"), 0o644); err == nil {
		t.Error("expected an error when the parent is a regular file")
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(file, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "nope"), want: false},
		{name: "empty", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "print", want: false},
		{input: "print.yaml", want: false},
		{input: "./print.yaml", want: true},
		{input: "/etc/pagepdf/print.toml", want: true},
		{input: "C:\\pagepdf\\print.yaml", want: true},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("absolute paths differ on windows")
	}
	if got := fileutil.FileURL("/tmp/pagepdf-1.html"); got != "file:///tmp/pagepdf-1.html" {
		t.Errorf("FileURL() = %q", got)
	}
	if got := fileutil.FileURL("rel.html"); !strings.HasPrefix(got, "file:///") {
		t.Errorf("FileURL(relative) = %q, want absolute file URL", got)
	}
}
