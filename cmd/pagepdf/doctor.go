package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/cache"
	"github.com/alnah/go-pagepdf/internal/fileutil"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	Serverless    string `json:"serverless,omitempty"`
	Production    bool   `json:"production"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable   bool   `json:"temp_writable"`
	Cache          string `json:"cache"`
	CacheReachable bool   `json:"cache_reachable"`
	MaxTabs        int    `json:"max_tabs"`
}

// doctorCommand creates the environment diagnostics command.
func (a *app) doctorCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that Chrome, the temp directory and the cache are usable",
		Long: `Check the environment a render needs: a Chrome binary (or the serverless
Chromium on AWS Lambda, Vercel, Netlify and Cloud Run), sandbox settings
for containers and CI, a writable temp directory and a reachable cache.
Exits with 1 when an error would prevent rendering.`,
		Args: cobraArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := a.runDoctor(cmd.Context())

			if jsonOutput {
				if err := writeJSON(a.env.Stdout, result); err != nil {
					return err
				}
			} else {
				printDoctorResult(a.env.Stdout, result)
			}

			if result.Status == statusErrors {
				return &reportedError{err: fmt.Errorf("doctor found %d errors", len(result.Errors))}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func (a *app) runDoctor(ctx context.Context) *doctorResult {
	getenv := a.env.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Production: getenv("PAGEPDF_ENV") == "production",
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: firstNonEmpty(a.cfg.Render.BrowserBin, getenv("ROD_BROWSER_BIN")),
		},
		System: systemInfo{MaxTabs: pagepdf.ResolveTabLimit(a.cfg.Render.MaxTabs)},
	}

	checkEnvironment(result, getenv)
	if result.Env.Serverless != "" {
		a.checkServerlessChrome(result, getenv)
	} else {
		checkChrome(result)
	}
	checkSystem(result)
	a.checkCache(ctx, result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome detects the local Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; rod will download one on first render. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Version = chromeVersion(result, chromePath)
	result.Chrome.Sandbox = result.Env.NoSandbox != "1" && !result.Env.CI && result.Env.BrowserBin == ""
}

// checkServerlessChrome checks the bundled Chromium of a serverless platform.
func (a *app) checkServerlessChrome(result *doctorResult, getenv func(string) string) {
	bin := firstNonEmpty(a.cfg.Render.ServerlessChrome, getenv("PAGEPDF_SERVERLESS_CHROME"), pagepdf.DefaultServerlessChrome)
	if !fileutil.FileExists(bin) {
		msg := fmt.Sprintf("serverless Chromium not found at %s (set PAGEPDF_SERVERLESS_CHROME)", bin)
		if result.Env.Production {
			result.Errors = append(result.Errors, msg)
			return
		}
		result.Warnings = append(result.Warnings, msg+"; the local browser will be used")
		checkChrome(result)
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = bin
	result.Chrome.Version = chromeVersion(result, bin)
}

func chromeVersion(result *doctorResult, bin string) string {
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- browser path is user-provided
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

// checkEnvironment detects container, CI and serverless environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	result.Env.Serverless = pagepdf.DetectServerless(getenv)

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("PAGEPDF_CONTAINER") == "1" {
		return true, "PAGEPDF_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the browser can be handed temp HTML files.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, fileutil.TempPrefix+"doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// checkCache opens the configured cache and round-trips a probe entry.
func (a *app) checkCache(ctx context.Context, result *doctorResult) {
	location := a.cfg.Cache.Location
	if location == "" || location == "off" {
		result.System.Cache = "off"
		return
	}
	result.System.Cache = location

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := cache.Open(ctx, location)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cache unavailable: %v", err))
		return
	}
	defer func() { _ = c.Close() }()

	key := cache.KeyPrefix + "doctor"
	if err := c.Set(ctx, key, []byte("ok"), time.Minute); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cache not writable: %v", err))
		return
	}
	if _, ok, err := c.Get(ctx, key); err != nil || !ok {
		result.Warnings = append(result.Warnings, "Cache probe entry could not be read back")
	} else {
		result.System.CacheReachable = true
	}
	_ = c.Delete(ctx, key)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, styleTitle.Render("pagepdf doctor"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleTitle.Render("Chrome/Chromium"))
	if r.Chrome.Found {
		printSuccess(w, "Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			printSuccess(w, "Version: %s", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			printSuccess(w, "Sandbox: enabled")
		} else {
			printSuccess(w, "Sandbox: disabled")
		}
	} else {
		printFailure(w, "Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleTitle.Render("Environment"))
	printSuccess(w, "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Serverless != "" {
		printSuccess(w, "Serverless: %s", r.Env.Serverless)
	}
	if r.Env.Container {
		printSuccess(w, "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		printSuccess(w, "CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleTitle.Render("System"))
	if r.System.TempWritable {
		printSuccess(w, "Temp directory: writable")
	} else {
		printFailure(w, "Temp directory: not writable")
	}
	printSuccess(w, "Max tabs: %d", r.System.MaxTabs)
	switch {
	case r.System.Cache == "off":
		printSuccess(w, "Cache: off")
	case r.System.CacheReachable:
		printSuccess(w, "Cache: %s", r.System.Cache)
	default:
		printFailure(w, "Cache: %s", r.System.Cache)
	}
	fmt.Fprintln(w)

	for _, warn := range r.Warnings {
		printWarning(w, "%s", warn)
	}
	for _, err := range r.Errors {
		printFailure(w, "%s", err)
	}
	if len(r.Warnings)+len(r.Errors) > 0 {
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
