package pagepdf

import (
	"errors"
	"fmt"

	"github.com/alnah/go-pagepdf/internal/rules"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// Sentinel errors for library operations.
var (
	ErrInvalidDocument    = errors.New("document failed structural validation")
	ErrExportBlocked      = errors.New("export blocked by target rules")
	ErrInvalidTarget      = errors.New("invalid export target")
	ErrBrowserConnect     = errors.New("failed to connect to browser")
	ErrBrowserUnavailable = errors.New("serverless browser binary unavailable")
	ErrPageCreate         = errors.New("failed to create browser page")
	ErrPageLoad           = errors.New("failed to load page")
	ErrPDFGeneration      = errors.New("PDF generation failed")
	ErrPDFInspection      = errors.New("failed to read generated PDF")
	ErrAssetResolution    = errors.New("asset resolution failed")
	ErrExporterClosed     = errors.New("exporter is closed")
)

// ValidationError carries the structural issues that stopped a render.
// It matches ErrInvalidDocument with errors.Is.
type ValidationError struct {
	Result validate.Result
}

func (e *ValidationError) Error() string {
	n := len(e.Result.Errors)
	if n == 0 {
		return ErrInvalidDocument.Error()
	}
	first := e.Result.Errors[0]
	if n == 1 {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidDocument, first.Code, first.Message)
	}
	return fmt.Sprintf("%s: %s: %s (and %d more)", ErrInvalidDocument, first.Code, first.Message, n-1)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// BlockedError carries the target rule result of a blocked export.
// It matches ErrExportBlocked with errors.Is.
type BlockedError struct {
	Result rules.Result
}

func (e *BlockedError) Error() string {
	n := len(e.Result.BlockingIssues)
	if n == 0 {
		return ErrExportBlocked.Error()
	}
	first := e.Result.BlockingIssues[0]
	if n == 1 {
		return fmt.Sprintf("%s: %s on page %s", ErrExportBlocked, first.Code, first.PageID)
	}
	return fmt.Sprintf("%s: %s on page %s (and %d more)", ErrExportBlocked, first.Code, first.PageID, n-1)
}

func (e *BlockedError) Unwrap() error { return ErrExportBlocked }
