package main

import (
	"errors"
	"os"
	"path/filepath"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/cache"
	"github.com/alnah/go-pagepdf/internal/config"
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/fingerprint"
	"github.com/alnah/go-pagepdf/internal/hints"
	"github.com/alnah/go-pagepdf/internal/rules"
)

// Exit codes for the pagepdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or document
	ExitIO      = 3 // File not found, permission denied, cache unreachable
	ExitBrowser = 4 // Browser/Chrome errors
	ExitBlocked = 5 // Export blocked by target rules
)

// CLI errors.
var (
	ErrUsage     = errors.New("invalid usage")
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF")
	ErrCache     = errors.New("cache unavailable")
	ErrAssets    = errors.New("failed to load asset manifest")
)

// reportedError marks an error whose details the command already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Blocked exports (exit 5)
	if errors.Is(err, pagepdf.ErrExportBlocked) {
		return ExitBlocked
	}

	// Browser errors (exit 4)
	if errors.Is(err, pagepdf.ErrBrowserConnect) ||
		errors.Is(err, pagepdf.ErrBrowserUnavailable) ||
		errors.Is(err, pagepdf.ErrPageCreate) ||
		errors.Is(err, pagepdf.ErrPageLoad) ||
		errors.Is(err, pagepdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrCache) ||
		errors.Is(err, cache.ErrRedis) {
		return ExitIO
	}

	// Usage/config/document errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrAssets) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrNilData) ||
		errors.Is(err, pagepdf.ErrInvalidDocument) ||
		errors.Is(err, pagepdf.ErrInvalidTarget) ||
		errors.Is(err, pagepdf.ErrAssetResolution) ||
		errors.Is(err, rules.ErrInvalidSettings) ||
		errors.Is(err, document.ErrEmptyDocument) ||
		errors.Is(err, document.ErrDocumentTooLarge) ||
		errors.Is(err, document.ErrDocumentParse) ||
		errors.Is(err, fingerprint.ErrInvalidInput) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable suffix for err, or "".
func (a *app) hintFor(err error) string {
	switch {
	case errors.Is(err, pagepdf.ErrBrowserConnect), errors.Is(err, pagepdf.ErrBrowserUnavailable):
		return hints.ForBrowserConnect()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedConfigPaths(a.configPath))
	case errors.Is(err, pagepdf.ErrExportBlocked):
		return hints.ForBlockedExport()
	case errors.Is(err, pagepdf.ErrInvalidDocument):
		return hints.ForInvalidDocument()
	case errors.Is(err, ErrWritePDF):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrCache), errors.Is(err, cache.ErrRedis):
		return hints.ForCache(a.cfg.Cache.Location)
	}
	return ""
}

// searchedConfigPaths lists the user config location of a config name so
// the hint can suggest creating it.
func searchedConfigPaths(name string) []string {
	if name == "" || fileutil.IsFilePath(name) {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-pagepdf", name+".yaml")}
}
