package pagepdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/process"
)

// pdfRenderer prints an HTML document to PDF. It allows testing the
// exporter without a browser.
type pdfRenderer interface {
	RenderHTML(ctx context.Context, html string, opts *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// DefaultServerlessChrome is where serverless Chromium layers install the
// browser.
const DefaultServerlessChrome = "/opt/chromium"

// serverlessPlatforms maps the variable each platform sets to its name.
var serverlessPlatforms = []struct{ env, name string }{
	{"AWS_LAMBDA_FUNCTION_NAME", "aws-lambda"},
	{"VERCEL", "vercel"},
	{"NETLIFY", "netlify"},
	{"K_SERVICE", "cloud-run"},
}

// environment is the view of the process environment used to pick a browser.
type environment struct {
	getenv func(string) string
	exists func(string) bool
}

func osEnvironment() environment {
	return environment{getenv: os.Getenv, exists: fileutil.FileExists}
}

// serverlessPlatform returns the detected platform name, or "".
func (env environment) serverlessPlatform() string {
	for _, p := range serverlessPlatforms {
		if env.getenv(p.env) != "" {
			return p.name
		}
	}
	return ""
}

// DetectServerless returns the serverless platform named by the environment
// read through getenv (aws-lambda, vercel, netlify or cloud-run), or "".
func DetectServerless(getenv func(string) string) string {
	return environment{getenv: getenv}.serverlessPlatform()
}

func (env environment) production() bool {
	return env.getenv("PAGEPDF_ENV") == "production"
}

// browserChoice is the launch plan for Chrome.
type browserChoice struct {
	Bin        string // empty lets rod find or download a browser
	NoSandbox  bool
	Serverless bool
	// Fallback is set when a serverless platform had no usable binary and
	// the local browser is used instead.
	Fallback bool
}

// chooseBrowser decides how to launch Chrome. On a serverless platform the
// bundled Chromium is required in production; elsewhere its absence falls
// back to the local browser.
func chooseBrowser(cfg exporterConfig, env environment) (browserChoice, error) {
	if env.serverlessPlatform() != "" {
		bin := firstNonEmpty(cfg.serverlessChrome, env.getenv("PAGEPDF_SERVERLESS_CHROME"), DefaultServerlessChrome)
		if env.exists(bin) {
			return browserChoice{Bin: bin, NoSandbox: true, Serverless: true}, nil
		}
		if env.production() {
			return browserChoice{}, fmt.Errorf("%w: %s", ErrBrowserUnavailable, bin)
		}
		choice := localBrowser(cfg, env)
		choice.Fallback = true
		return choice, nil
	}
	return localBrowser(cfg, env), nil
}

func localBrowser(cfg exporterConfig, env environment) browserChoice {
	bin := firstNonEmpty(cfg.browserBin, env.getenv("ROD_BROWSER_BIN"))
	// NoSandbox required for CI and containerized environments.
	noSandbox := env.getenv("CI") == "true" || env.getenv("ROD_NO_SANDBOX") == "1" || bin != ""
	return browserChoice{Bin: bin, NoSandbox: noSandbox}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// rodRenderer implements pdfRenderer with one shared Chrome process and one
// tab per render. Chrome is launched on first use.
type rodRenderer struct {
	cfg    exporterConfig
	env    environment
	logger *log.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func newRodRenderer(cfg exporterConfig, logger *log.Logger) *rodRenderer {
	return &rodRenderer{cfg: cfg, env: osEnvironment(), logger: logger}
}

// ensureBrowser returns the shared browser, launching it if needed.
// Concurrent first callers wait on the same launch. A failed launch is
// retried by the next caller.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	choice, err := chooseBrowser(r.cfg, r.env)
	if err != nil {
		return nil, err
	}
	if choice.Fallback {
		r.logger.Warn("serverless chromium not found, using local browser", "platform", r.env.serverlessPlatform())
	}

	l := launcher.New().Headless(true)
	if choice.Bin != "" {
		l = l.Bin(choice.Bin)
	}
	if choice.NoSandbox {
		l = l.NoSandbox(true)
	}
	if choice.Serverless {
		l = l.Set("single-process").Set("no-zygote").Set("disable-gpu").Set("disable-dev-shm-usage")
	}

	start := time.Now()
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.logger.Debug("browser launched", "bin", choice.Bin, "serverless", choice.Serverless, "pid", l.PID(), "took", time.Since(start))
	r.browser = browser
	r.launcher = l
	return browser, nil
}

// RenderHTML writes html to a temp file, opens it in a new tab, waits for
// the network to go quiet and prints it. The tab is closed on every path.
func (r *rodRenderer) RenderHTML(ctx context.Context, html string, opts *proto.PagePrintToPDF) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tab, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = tab.Close() }()

	page := tab.Context(ctx)
	waitIdle := page.WaitRequestIdle(r.cfg.networkIdle, nil, nil, nil)

	if err := page.Navigate(fileutil.FileURL(path)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	waitIdle()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close closes the browser and kills its process group.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher.Cleanup()
	}
	r.browser = nil
	r.launcher = nil
	return err
}
