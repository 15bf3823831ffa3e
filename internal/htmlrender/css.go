package htmlrender

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\(\s*[0-9.]+%?\s*(?:,\s*[0-9.]+%?\s*){2,3}\)$`)
	namedColor       = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

var (
	fontWeights = map[string]bool{
		"normal": true, "bold": true, "bolder": true, "lighter": true,
		"100": true, "200": true, "300": true, "400": true, "500": true,
		"600": true, "700": true, "800": true, "900": true,
	}
	fontStyles = map[string]bool{"normal": true, "italic": true, "oblique": true}
	textAligns = map[string]bool{"left": true, "right": true, "center": true, "justify": true, "start": true, "end": true}
)

// safeColor returns c when it is a plain CSS color, or fallback otherwise.
func safeColor(c, fallback string) string {
	c = strings.TrimSpace(c)
	switch {
	case c == "":
		return fallback
	case hexColorPattern.MatchString(c), funcColorPattern.MatchString(c), namedColor.MatchString(c):
		return c
	}
	return fallback
}

// safeKeyword returns v lowercased when it belongs to allowed.
func safeKeyword(v string, allowed map[string]bool) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if allowed[v] {
		return v
	}
	return ""
}

// px formats a finite length in CSS pixels. Non-finite values become 0.
func px(v float64) string {
	return num(v) + "px"
}

// num formats a finite number without trailing zeros. Non-finite values
// become 0.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeCSSString escapes a string for use inside a double-quoted CSS string.
func escapeCSSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\A `)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "<", `\3C `)
	return s
}

// declarations accumulates CSS declarations for an inline style attribute.
type declarations struct {
	b strings.Builder
}

func (d *declarations) set(prop, value string) {
	if value == "" {
		return
	}
	d.b.WriteString(prop)
	d.b.WriteByte(':')
	d.b.WriteString(value)
	d.b.WriteByte(';')
}

func (d *declarations) String() string {
	return d.b.String()
}
