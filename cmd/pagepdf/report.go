package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/rules"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleCode    = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconBlocked = "■"
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printFailure(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "    "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// Reports
// =============================================================================

// location formats the page and node an issue is attached to.
func location(pageID, nodeID string) string {
	var parts []string
	if pageID != "" {
		parts = append(parts, "page "+pageID)
	}
	if nodeID != "" {
		parts = append(parts, "node "+nodeID)
	}
	if len(parts) == 0 {
		return "document"
	}
	return strings.Join(parts, ", ")
}

// printValidation writes the structural validation report.
func printValidation(w io.Writer, res validate.Result) {
	fmt.Fprintln(w, styleTitle.Render("Structure"))
	for _, is := range res.Errors {
		fmt.Fprintf(w, "  %s %s %s\n", styleError.Render(iconError), styleCode.Render(is.Code), is.Message)
		printDetail(w, "%s  %s", location(is.PageID, is.NodeID), is.Path)
	}
	for _, is := range res.Warnings {
		fmt.Fprintf(w, "  %s %s %s\n", styleWarning.Render(iconWarning), styleCode.Render(is.Code), is.Message)
		printDetail(w, "%s  %s", location(is.PageID, is.NodeID), is.Path)
	}
	if res.OK {
		printSuccess(w, "valid (%d warnings)", len(res.Warnings))
	} else {
		printFailure(w, "invalid: %d errors, %d warnings", len(res.Errors), len(res.Warnings))
	}
}

// printRules writes the export-target report.
func printRules(w io.Writer, target pagepdf.Target, res rules.Result) {
	fmt.Fprintln(w, styleTitle.Render("Target "+string(target)))
	for _, is := range res.Issues {
		icon := styleWarning.Render(iconWarning)
		if is.Blocking {
			icon = styleError.Render(iconBlocked)
		}
		fmt.Fprintf(w, "  %s %s %s\n", icon, styleCode.Render(is.Code), is.Message)
		printDetail(w, "%s  %s", location(is.PageID, is.FrameID), is.Path)
	}
	if res.OK {
		printSuccess(w, "exportable (%d warnings)", len(res.Warnings))
	} else {
		printFailure(w, "blocked: %d blocking issues, %d warnings", len(res.BlockingIssues), len(res.Warnings))
	}
}

// printPreflight writes both reports. Target rules are only meaningful for a
// structurally valid document.
func printPreflight(w io.Writer, pf pagepdf.Preflight) {
	printValidation(w, pf.Structural)
	if !pf.Structural.OK {
		return
	}
	fmt.Fprintln(w)
	printRules(w, pf.Target, pf.Rules)
}

// printRenderSummary writes the outcome of a render.
func printRenderSummary(w io.Writer, path string, meta pagepdf.RenderMeta) {
	source := "rendered"
	if meta.Cached {
		source = "cached"
	}
	printSuccess(w, "%s %s", path, styleDim.Render(fmt.Sprintf("(%d pages, %s, %s)", meta.PageCount, source, meta.Fingerprint)))
	for _, warn := range meta.Warnings {
		printWarning(w, "%s %s", warn.Code, warn.Message)
		if warn.PageID != "" || warn.NodeID != "" {
			printDetail(w, "%s", location(warn.PageID, warn.NodeID))
		}
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
