package main

import (
	"strings"

	"github.com/spf13/cobra"

	pagepdf "github.com/alnah/go-pagepdf"
)

// preflightCommand creates the command that runs every check of an export
// without rendering.
func (a *app) preflightCommand() *cobra.Command {
	var (
		jsonOutput bool
		target     string
		assetsPath string
	)

	cmd := &cobra.Command{
		Use:   "preflight [file]",
		Short: "Run structural and export-target checks without rendering",
		Long: `Run the structural validator and the rules of the export target. No
browser is started. Exits with 2 when the document is invalid and with 5
when an issue blocks the export.`,
		Args: cobraArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			decoded, _, err := a.readDocument(ctx, args)
			if err != nil {
				return err
			}

			opts := []pagepdf.Option{pagepdf.WithLogger(loggerFromContext(ctx))}
			if assetsPath != "" {
				manifest, err := loadAssetManifest(assetsPath)
				if err != nil {
					return err
				}
				opts = append(opts, pagepdf.WithAssetResolver(manifest))
			}

			exp := a.env.NewExporter(opts...)
			defer func() { _ = exp.Close() }()

			pf, err := exp.ValidateOnly(ctx, decoded.Document, a.target(target), a.cfg.Settings())
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := writeJSON(a.env.Stdout, pf); err != nil {
					return err
				}
			} else {
				printPreflight(a.env.Stdout, pf)
			}

			switch {
			case !pf.Structural.OK:
				return &reportedError{err: &pagepdf.ValidationError{Result: pf.Structural}}
			case !pf.Rules.OK:
				return &reportedError{err: &pagepdf.BlockedError{Result: pf.Rules}}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().StringVarP(&target, "target", "t", "", "export target: DIGITAL or HARDCOPY (default: config, then document)")
	cmd.Flags().StringVar(&assetsPath, "assets", "", "JSON file listing assets referenced by id")
	return cmd
}

// target returns the flag value, the configured target, or "" to use the
// document's own.
func (a *app) target(flag string) pagepdf.Target {
	if flag != "" {
		return pagepdf.Target(strings.ToUpper(flag))
	}
	return a.cfg.Target("")
}
