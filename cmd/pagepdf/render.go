package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/cache"
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/fingerprint"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	output      string
	target      string
	fingerprint string
	cache       string
	browserBin  string
	maxTabs     int
	assetsPath  string
	jsonOutput  bool
}

// renderCommand creates the export command.
func (a *app) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Validate a document and render it to PDF",
		Long: `Validate a document against its export target and render it to PDF
with headless Chrome. Exports blocked by HARDCOPY rules exit with 5.

The PDF is written next to the input file unless --output is given; use
"-o -" to write it to stdout. With a cache configured, documents whose
fingerprint is unchanged are served without starting a browser.`,
		Example: `  pagepdf render book.json
  pagepdf render book.json -t DIGITAL -o out/book.pdf
  pagepdf render -o - --cache redis://localhost:6379/0 < book.json > book.pdf`,
		Args: cobraArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyRenderFlags(cmd.Flags(), f)
			return a.runRender(cmd.Context(), args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", `output PDF path, "-" for stdout (default: input name with .pdf)`)
	fl.StringVarP(&f.target, "target", "t", "", "export target: DIGITAL or HARDCOPY (default: config, then document)")
	fl.StringVar(&f.fingerprint, "fingerprint", "", "cache key of this document state (default: export hash or digest)")
	fl.StringVar(&f.cache, "cache", "", `cache location: a directory, a redis:// URL, or "off"`)
	fl.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary (default: ROD_BROWSER_BIN or auto-detect)")
	fl.IntVar(&f.maxTabs, "max-tabs", 0, "maximum concurrent browser tabs (default: GOMAXPROCS/2)")
	fl.StringVar(&f.assetsPath, "assets", "", "JSON file listing assets referenced by id")
	fl.BoolVar(&f.jsonOutput, "json", false, "print render metadata as JSON")
	return cmd
}

// applyRenderFlags overrides config values with the flags set explicitly.
func (a *app) applyRenderFlags(fl *pflag.FlagSet, f renderFlags) {
	if fl.Changed("cache") {
		a.cfg.Cache.Location = f.cache
	}
	if fl.Changed("browser-bin") {
		a.cfg.Render.BrowserBin = f.browserBin
	}
	if fl.Changed("max-tabs") {
		a.cfg.Render.MaxTabs = f.maxTabs
	}
}

func (a *app) runRender(ctx context.Context, args []string, f renderFlags) error {
	logger := loggerFromContext(ctx)

	decoded, input, err := a.readDocument(ctx, args)
	if err != nil {
		return err
	}

	pdfCache, err := cache.Open(ctx, a.cfg.Cache.Location)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	defer func() { _ = pdfCache.Close() }()

	opts := a.exporterOptions(logger, pdfCache)
	if f.assetsPath != "" {
		manifest, err := loadAssetManifest(f.assetsPath)
		if err != nil {
			return err
		}
		opts = append(opts, pagepdf.WithAssetResolver(manifest))
	}

	exp := a.env.NewExporter(opts...)
	defer func() {
		if err := exp.Close(); err != nil {
			logger.Warn("closing exporter", "err", err)
		}
	}()

	target := a.target(f.target)
	fp := f.fingerprint
	if fp == "" {
		fp = legacyFingerprint(decoded, target)
	}

	res, err := exp.Export(ctx, decoded.Document, target, a.cfg.Settings(), fp)
	if err != nil {
		var blocked *pagepdf.BlockedError
		if errors.As(err, &blocked) {
			printRules(a.env.Stderr, blocked.Result.BlockingIssues[0].Target, blocked.Result)
		}
		return err
	}

	output := f.output
	if output == "" {
		output = defaultOutputPath(input)
	}
	if output == stdinName {
		if _, err := a.env.Stdout.Write(res.PDF); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWritePDF, err)
		}
	} else if err := fileutil.WriteFileAtomic(output, res.PDF, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}

	switch {
	case f.jsonOutput && output != stdinName:
		return writeJSON(a.env.Stdout, res.Meta)
	case f.jsonOutput:
		return writeJSON(a.env.Stderr, res.Meta)
	case output == stdinName:
		printRenderSummary(a.env.Stderr, "stdout", res.Meta)
	default:
		printRenderSummary(a.env.Stdout, output, res.Meta)
	}
	return nil
}

// exporterOptions converts the config into exporter options.
func (a *app) exporterOptions(logger *log.Logger, c pagepdf.PDFCache) []pagepdf.Option {
	return []pagepdf.Option{
		pagepdf.WithLogger(logger),
		pagepdf.WithBrowserBin(a.cfg.Render.BrowserBin),
		pagepdf.WithServerlessChrome(a.cfg.Render.ServerlessChrome),
		pagepdf.WithMaxTabs(a.cfg.Render.MaxTabs),
		pagepdf.WithNetworkIdle(a.cfg.NetworkIdle()),
		pagepdf.WithCache(c, a.cfg.CacheTTL()),
	}
}

// legacyFingerprint returns the export hash of a legacy contract, which
// carries page and frame versions. Current documents return "" and are
// keyed by their digest.
func legacyFingerprint(decoded document.Decoded, target pagepdf.Target) string {
	if decoded.Legacy == nil {
		return ""
	}
	if target == "" {
		target = decoded.Legacy.ExportTarget
	}
	return fingerprint.ExportHash(fingerprint.FromLegacy(*decoded.Legacy, pagepdf.Target(strings.ToUpper(string(target)))))
}
