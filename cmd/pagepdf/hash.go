package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/document"
	"github.com/alnah/go-pagepdf/internal/fingerprint"
)

// hashCommand creates the command printing the cache fingerprint of a
// document.
func (a *app) hashCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "hash [file]",
		Short: "Print the export fingerprint of a document",
		Long: `Print the fingerprint used as cache key for a render.

Input carrying version metadata (a legacy contract or export hash input
with storybookId, pages and frames, in camelCase or snake_case) is hashed
from its identity and versions only. A current document, recognised by its
renderVersion, is hashed from its full content.`,
		Args: cobraArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := a.readInput(args)
			if err != nil {
				return err
			}
			fp, err := fingerprintOf(data, a.target(target))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.env.Stdout, fp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "export target: DIGITAL or HARDCOPY (default: config, then input)")
	return cmd
}

// fingerprintOf hashes raw input for target; an empty target keeps the one
// of the input.
func fingerprintOf(data []byte, target pagepdf.Target) (string, error) {
	var probe struct {
		RenderVersion *int `json:"renderVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", document.ErrDocumentParse, err)
	}

	if probe.RenderVersion != nil {
		decoded, err := document.Decode(data)
		if err != nil {
			return "", err
		}
		if target == "" {
			target = pagepdf.Target(strings.ToUpper(string(decoded.Document.ExportTarget)))
		}
		if !target.Valid() {
			return "", fmt.Errorf("%w: %q", pagepdf.ErrInvalidTarget, target)
		}
		return fingerprint.DocumentDigest(decoded.Document, target)
	}

	in, err := fingerprint.Parse(data)
	if err != nil {
		return "", err
	}
	if target != "" {
		in.ExportTarget = target
	}
	in.ExportTarget = pagepdf.Target(strings.ToUpper(string(in.ExportTarget)))
	if !in.ExportTarget.Valid() {
		return "", fmt.Errorf("%w: %q", pagepdf.ErrInvalidTarget, in.ExportTarget)
	}
	return pagepdf.ExportHash(in), nil
}
