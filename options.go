package pagepdf

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Option configures an Exporter.
type Option func(*Exporter)

// PDFCache stores rendered PDFs by key. The file and Redis caches of the
// CLI satisfy it.
type PDFCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	browserBin       string
	serverlessChrome string
	maxTabs          int
	networkIdle      time.Duration
	cacheTTL         time.Duration
}

// defaultNetworkIdle is the quiet period waited for before printing.
const defaultNetworkIdle = 500 * time.Millisecond

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBrowserBin sets the Chrome binary used outside serverless platforms.
// Empty keeps ROD_BROWSER_BIN or rod's managed browser.
func WithBrowserBin(path string) Option {
	return func(e *Exporter) { e.cfg.browserBin = path }
}

// WithServerlessChrome sets the Chromium binary used on serverless
// platforms. Empty keeps PAGEPDF_SERVERLESS_CHROME or /opt/chromium.
func WithServerlessChrome(path string) Option {
	return func(e *Exporter) { e.cfg.serverlessChrome = path }
}

// WithMaxTabs bounds the number of tabs rendering at once. Zero or less
// derives the limit from GOMAXPROCS.
func WithMaxTabs(n int) Option {
	return func(e *Exporter) { e.cfg.maxTabs = n }
}

// WithNetworkIdle sets how long the network must stay quiet before a page is
// printed.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithNetworkIdle(d time.Duration) Option {
	if d < 0 {
		panic("pagepdf: WithNetworkIdle duration must not be negative")
	}
	return func(e *Exporter) { e.cfg.networkIdle = d }
}

// WithAssetResolver merges assets known to r into every document before
// validation.
func WithAssetResolver(r AssetResolver) Option {
	return func(e *Exporter) { e.resolver = r }
}

// WithCache stores rendered PDFs in c under their fingerprint for ttl
// (zero keeps them until evicted).
func WithCache(c PDFCache, ttl time.Duration) Option {
	return func(e *Exporter) {
		e.cache = c
		e.cfg.cacheTTL = ttl
	}
}

// withRenderer replaces the browser renderer. Used by tests.
func withRenderer(r pdfRenderer) Option {
	return func(e *Exporter) { e.renderer = r }
}

// withPageCounter replaces the PDF page counter. Used by tests.
func withPageCounter(c pageCounter) Option {
	return func(e *Exporter) { e.counter = c }
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
