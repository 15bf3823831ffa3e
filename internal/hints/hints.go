// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-pagepdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// serverlessEnv lists the variables set by the platforms where Chrome is
// shipped as a layer instead of being installed.
var serverlessEnv = []string{"AWS_LAMBDA_FUNCTION_NAME", "VERCEL", "NETLIFY", "K_SERVICE"}

// ForBrowserConnect returns hints for browser launch and connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if isServerless() {
		if os.Getenv("PAGEPDF_SERVERLESS_CHROME") == "" {
			hints = append(hints, "set PAGEPDF_SERVERLESS_CHROME to the Chromium layer binary")
		}
	} else if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(slashed(p), "go-pagepdf/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForBlockedExport returns the hint shown when hardcopy rules block an export.
func ForBlockedExport() string {
	return format("run 'pagepdf preflight' to list blocking issues, or export with --target DIGITAL")
}

// ForInvalidDocument returns the hint shown when structural validation fails.
func ForInvalidDocument() string {
	return format("run 'pagepdf validate' for the full list of errors")
}

// ForCache returns hints for cache errors.
func ForCache(location string) string {
	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		return format("check the Redis server is reachable, or pass --cache off")
	}
	return format("check the cache directory is writable, or pass --cache off")
}

func isServerless() bool {
	for _, k := range serverlessEnv {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// slashed normalises separators so Windows paths match too.
func slashed(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
