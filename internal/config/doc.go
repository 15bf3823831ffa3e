// Package config loads pagepdf settings from YAML or TOML files.
//
// A config file carries the export rule settings (margins, print safe area
// padding, minimum image widths), browser options, the cache location and
// logging options. CLI flags override file values.
package config
