package pagepdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/alnah/go-pagepdf/internal/cache"
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fingerprint"
	"github.com/alnah/go-pagepdf/internal/htmlrender"
	"github.com/alnah/go-pagepdf/internal/rules"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// Exporter validates documents and renders them to PDF. It owns one
// headless Chrome process, launched on the first render and released by
// Close. An Exporter is safe for concurrent use.
type Exporter struct {
	cfg      exporterConfig
	logger   *log.Logger
	resolver AssetResolver
	cache    PDFCache
	renderer pdfRenderer
	counter  pageCounter
	tabs     *tabLimiter
	newID    func() string

	mu     sync.Mutex
	closed bool
}

// New creates an Exporter. Chrome is not started until the first render.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		cfg:    exporterConfig{networkIdle: defaultNetworkIdle},
		logger: discardLogger(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = newRodRenderer(e.cfg, e.logger)
	}
	if e.counter == nil {
		e.counter = newPDFCPUCounter()
	}
	e.tabs = newTabLimiter(ResolveTabLimit(e.cfg.maxTabs))
	return e
}

// Close releases the browser. Renders started after Close fail with
// ErrExporterClosed. Calling Close more than once is safe.
func (e *Exporter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var errs []error
	if err := e.renderer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Exporter) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// ValidateOnly runs the structural validator and the rules of target
// without touching the browser. An empty target uses the document's own.
// Findings are returned as data; the error reports bad arguments or a
// failing asset resolver.
func (e *Exporter) ValidateOnly(ctx context.Context, doc Document, target Target, s Settings) (Preflight, error) {
	pf, _, err := e.preflight(ctx, doc, target, s)
	return pf, err
}

// preflight also returns the document with resolved assets.
func (e *Exporter) preflight(ctx context.Context, doc document.Document, target document.Target, s rules.Settings) (Preflight, document.Document, error) {
	t, err := resolveTarget(doc, target)
	if err != nil {
		return Preflight{}, document.Document{}, err
	}
	if err := s.Validate(); err != nil {
		return Preflight{}, document.Document{}, err
	}
	doc, err = e.resolveAssets(ctx, doc)
	if err != nil {
		return Preflight{}, document.Document{}, err
	}
	pf := Preflight{
		Target:     t,
		Structural: validate.Validate(doc),
		Rules:      rules.Validate(doc, t, s),
	}
	return pf, doc, nil
}

// ValidateLegacyForTarget applies the rules of target to a legacy contract.
func (e *Exporter) ValidateLegacyForTarget(c LegacyContract, target Target, s Settings) (TargetResult, error) {
	if !target.Valid() {
		return TargetResult{}, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	if err := s.Validate(); err != nil {
		return TargetResult{}, err
	}
	return rules.ValidateLegacy(c, target, s), nil
}

// Render prints doc for target. Structural errors stop the render with a
// *ValidationError; target rules are not applied (see Export). fp keys the
// cache and is reported back; when empty, a digest of the document is used.
func (e *Exporter) Render(ctx context.Context, doc Document, target Target, fp string) (*RenderResult, error) {
	if e.isClosed() {
		return nil, ErrExporterClosed
	}
	t, err := resolveTarget(doc, target)
	if err != nil {
		return nil, err
	}
	doc, err = e.resolveAssets(ctx, doc)
	if err != nil {
		return nil, err
	}
	if res := validate.Validate(doc); !res.OK {
		return nil, &ValidationError{Result: res}
	}
	return e.render(ctx, doc, t, fp)
}

// Export validates doc against target and renders it unless an issue
// blocks the export, in which case a *BlockedError is returned. Non-blocking
// rule issues are reported as warnings of the result.
func (e *Exporter) Export(ctx context.Context, doc Document, target Target, s Settings, fp string) (*RenderResult, error) {
	if e.isClosed() {
		return nil, ErrExporterClosed
	}
	pf, resolved, err := e.preflight(ctx, doc, target, s)
	if err != nil {
		return nil, err
	}
	if !pf.Structural.OK {
		return nil, &ValidationError{Result: pf.Structural}
	}
	if !pf.Rules.OK {
		return nil, &BlockedError{Result: pf.Rules}
	}

	res, err := e.render(ctx, resolved, pf.Target, fp)
	if err != nil {
		return nil, err
	}
	res.Meta.Warnings = mergeRuleWarnings(res.Meta.Warnings, pf.Rules.Warnings)
	return res, nil
}

func (e *Exporter) render(ctx context.Context, doc document.Document, target document.Target, fp string) (*RenderResult, error) {
	if fp == "" {
		digest, err := fingerprint.DocumentDigest(doc, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		fp = digest
	}

	id := e.newID()
	logger := e.logger.With("render", id, "fingerprint", fp, "target", target)
	meta := RenderMeta{
		Fingerprint: fp,
		Warnings:    overflowWarnings(doc),
		RenderID:    id,
	}
	pageCount := len(htmlrender.SortedPages(doc))
	key := cache.PDFKey(fp, doc.RenderVersion)

	if pdf, ok := e.cached(ctx, key, logger); ok {
		meta.Cached = true
		meta.PageCount, meta.Warnings = e.checkPageCount(pdf, pageCount, meta.Warnings, logger)
		logger.Info("render served from cache", "bytes", len(pdf))
		return &RenderResult{PDF: pdf, Meta: meta}, nil
	}

	html, err := htmlrender.BuildDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	start := time.Now()
	logger.Debug("render started", "pages", pageCount)
	pdf, err := e.printInTab(ctx, html, printOptions(doc, target))
	if err != nil {
		logger.Error("render failed", "err", err)
		return nil, err
	}

	meta.PageCount, meta.Warnings = e.checkPageCount(pdf, pageCount, meta.Warnings, logger)
	e.store(ctx, key, pdf, logger)
	logger.Info("render finished", "pages", meta.PageCount, "bytes", len(pdf), "took", time.Since(start))
	return &RenderResult{PDF: pdf, Meta: meta}, nil
}

// printInTab renders html while holding a tab slot. The slot is released
// even when the renderer panics.
func (e *Exporter) printInTab(ctx context.Context, html string, opts *proto.PagePrintToPDF) ([]byte, error) {
	if err := e.tabs.acquire(ctx); err != nil {
		return nil, err
	}
	defer e.tabs.release()
	return e.renderer.RenderHTML(ctx, html, opts)
}

// checkPageCount reads the page count back from the PDF. An unreadable PDF
// keeps the document page count; a different count adds a warning.
func (e *Exporter) checkPageCount(pdf []byte, want int, warnings []Warning, logger *log.Logger) (int, []Warning) {
	got, err := e.counter.PageCount(pdf)
	if err != nil {
		logger.Warn("could not count PDF pages", "err", err)
		return want, warnings
	}
	if got != want {
		warnings = append(warnings, Warning{
			Code:    WarningPageCountChanged,
			Message: fmt.Sprintf("PDF has %d pages, document has %d", got, want),
		})
	}
	return got, warnings
}

func (e *Exporter) cached(ctx context.Context, key string, logger *log.Logger) ([]byte, bool) {
	if e.cache == nil {
		return nil, false
	}
	pdf, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	return pdf, ok
}

func (e *Exporter) store(ctx context.Context, key string, pdf []byte, logger *log.Logger) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, pdf, e.cfg.cacheTTL); err != nil {
		logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func (e *Exporter) resolveAssets(ctx context.Context, doc document.Document) (document.Document, error) {
	out, err := document.ResolveAssets(ctx, doc, e.resolver)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", ErrAssetResolution, err)
	}
	return out, nil
}

// resolveTarget returns target, or the document's own when target is empty.
func resolveTarget(doc document.Document, target document.Target) (document.Target, error) {
	if target == "" {
		target = doc.ExportTarget
	}
	target = document.Target(strings.ToUpper(string(target)))
	if !target.Valid() {
		return "", fmt.Errorf("%w: %q (must be DIGITAL or HARDCOPY)", ErrInvalidTarget, target)
	}
	return target, nil
}

func overflowWarnings(doc document.Document) []Warning {
	overflows := rules.DetectOverflow(doc)
	warnings := make([]Warning, 0, len(overflows))
	for _, o := range overflows {
		warnings = append(warnings, Warning{
			Code:    WarningTextOverflow,
			PageID:  o.PageID,
			NodeID:  o.NodeID,
			Message: "text may not fit its frame",
		})
	}
	return warnings
}

// mergeRuleWarnings appends non-blocking rule issues not already reported
// by the renderer.
func mergeRuleWarnings(warnings []Warning, issues []rules.Issue) []Warning {
	seen := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		seen[warningKey(w.Code, w.PageID, w.NodeID)] = true
	}
	for _, is := range issues {
		if seen[warningKey(is.Code, is.PageID, is.FrameID)] {
			continue
		}
		warnings = append(warnings, Warning{Code: is.Code, PageID: is.PageID, NodeID: is.FrameID, Message: is.Message})
	}
	return warnings
}

func warningKey(code, pageID, nodeID string) string {
	return code + "\x00" + pageID + "\x00" + nodeID
}
