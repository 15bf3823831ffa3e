package document

import "strings"

// Text defaults used when a style leaves a value unset.
const (
	DefaultFontFamily = "Nunito"
	DefaultFontSize   = 16.0
	DefaultLineHeight = 1.3
	DefaultTextColor  = "#1f2933"
)

// supportedFonts are the families embedded in the print stylesheet.
var supportedFonts = map[string]string{
	"nunito":          "Nunito",
	"merriweather":    "Merriweather",
	"georgia":         "Georgia",
	"arial":           "Arial",
	"helvetica":       "Helvetica",
	"times new roman": "Times New Roman",
	"comic neue":      "Comic Neue",
	"open sans":       "Open Sans",
	"lora":            "Lora",
}

var supportedDecorations = map[string]bool{
	"none":         true,
	"underline":    true,
	"line-through": true,
}

// Fallback records one text style value replaced by a safe default.
type Fallback struct {
	Field string
	From  string
	To    string
}

// ResolveTextStyle returns a style safe to print together with the list of
// replaced values. Unsupported font families fall back to DefaultFontFamily
// and unsupported decorations to "none"; sizes get their defaults.
func ResolveTextStyle(s Style) (Style, []Fallback) {
	var fallbacks []Fallback

	family := strings.TrimSpace(s.FontFamily)
	switch canonical, ok := supportedFonts[strings.ToLower(family)]; {
	case family == "":
		s.FontFamily = DefaultFontFamily
	case ok:
		s.FontFamily = canonical
	default:
		fallbacks = append(fallbacks, Fallback{Field: "fontFamily", From: family, To: DefaultFontFamily})
		s.FontFamily = DefaultFontFamily
	}

	deco := strings.ToLower(strings.TrimSpace(s.TextDecoration))
	switch {
	case deco == "":
		s.TextDecoration = "none"
	case supportedDecorations[deco]:
		s.TextDecoration = deco
	default:
		fallbacks = append(fallbacks, Fallback{Field: "textDecoration", From: s.TextDecoration, To: "none"})
		s.TextDecoration = "none"
	}

	if !(s.FontSize > 0) {
		s.FontSize = DefaultFontSize
	}
	if !(s.LineHeight > 0) {
		s.LineHeight = DefaultLineHeight
	}
	if s.Color == "" {
		s.Color = DefaultTextColor
	}
	return s, fallbacks
}
