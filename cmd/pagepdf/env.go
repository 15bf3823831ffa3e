package main

import (
	"context"
	"io"
	"os"

	pagepdf "github.com/alnah/go-pagepdf"
)

// exporter is the part of *pagepdf.Exporter the commands use.
type exporter interface {
	ValidateOnly(ctx context.Context, doc pagepdf.Document, target pagepdf.Target, s pagepdf.Settings) (pagepdf.Preflight, error)
	Export(ctx context.Context, doc pagepdf.Document, target pagepdf.Target, s pagepdf.Settings, fp string) (*pagepdf.RenderResult, error)
	Close() error
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	NewExporter func(opts ...pagepdf.Option) exporter
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		NewExporter: func(opts ...pagepdf.Option) exporter {
			return pagepdf.New(opts...)
		},
	}
}
