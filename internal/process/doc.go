// Package process cleans up browser processes left behind by a closed
// exporter.
package process
