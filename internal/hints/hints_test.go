package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel(): they call t.Setenv and
//   swap the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func clearPlatformEnv(t *testing.T) {
	t.Helper()
	for _, k := range append([]string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "PAGEPDF_SERVERLESS_CHROME"}, serverlessEnv...) {
		t.Setenv(k, "")
	}
}

func withContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		env         map[string]string
		contains    []string
		notContains []string
	}{
		{
			name:     "CI without sandbox flag",
			env:      map[string]string{"CI": "true"},
			contains: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name:      "docker",
			container: true,
			contains:  []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "sandbox already disabled",
			container:   true,
			env:         map[string]string{"ROD_NO_SANDBOX": "1"},
			notContains: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "browser bin already set",
			env:         map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			notContains: []string{"ROD_BROWSER_BIN"},
		},
		{
			name:        "lambda without chrome layer",
			env:         map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "export"},
			contains:    []string{"PAGEPDF_SERVERLESS_CHROME"},
			notContains: []string{"ROD_BROWSER_BIN"},
		},
		{
			name:        "cloud run with chrome layer",
			env:         map[string]string{"K_SERVICE": "export", "PAGEPDF_SERVERLESS_CHROME": "/opt/chromium"},
			notContains: []string{"PAGEPDF_SERVERLESS_CHROME", "ROD_BROWSER_BIN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearPlatformEnv(t)
			withContainer(t, tt.container)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			hint := ForBrowserConnect()
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q does not contain %q", hint, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(hint, unwanted) {
					t.Errorf("hint %q should not contain %q", hint, unwanted)
				}
			}
		})
	}
}

func TestForBrowserConnect_AllConfigured(t *testing.T) {
	clearPlatformEnv(t)
	withContainer(t, true)
	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	if hint := ForBrowserConnect(); hint != "" {
		t.Errorf("expected empty hint when all configured, got %q", hint)
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{name: "no paths", paths: nil, contains: "--config"},
		{name: "user config dir", paths: []string{"print.yaml", "/home/u/.config/go-pagepdf/print.yaml"}, contains: "create /home/u/.config/go-pagepdf/print.yaml"},
		{name: "windows user config dir", paths: []string{`C:\Users\u\AppData\Roaming\go-pagepdf\print.yaml`}, contains: "or create"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hint := ForConfigNotFound(tt.paths); !strings.Contains(hint, tt.contains) {
				t.Errorf("hint %q does not contain %q", hint, tt.contains)
			}
		})
	}
}

func TestForCache(t *testing.T) {
	t.Parallel()

	if hint := ForCache("redis://localhost:6379/0"); !strings.Contains(hint, "Redis") {
		t.Errorf("redis hint = %q", hint)
	}
	if hint := ForCache("/var/cache/pagepdf"); !strings.Contains(hint, "directory") {
		t.Errorf("file hint = %q", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		ForOutputDirectory(),
		ForBlockedExport(),
		ForInvalidDocument(),
		ForCache(""),
		ForConfigNotFound(nil),
	} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
	if format("") != "" || formatHints(nil) != "" {
		t.Error("empty hints must format to the empty string")
	}
}
