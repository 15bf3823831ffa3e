package main

import (
	"github.com/spf13/cobra"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/validate"
)

// validateCommand creates the structural validation command.
func (a *app) validateCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document for structural errors",
		Long: `Check a document for structural errors: unknown node types, broken
draw orders, missing image sources, invalid crops. Documents with errors
cannot be rendered. Exits with 2 when the document is invalid.`,
		Args: cobraArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, _, err := a.readDocument(cmd.Context(), args)
			if err != nil {
				return err
			}

			res := validate.Validate(decoded.Document)
			loggerFromContext(cmd.Context()).Debug("validated", "errors", len(res.Errors), "warnings", len(res.Warnings))

			if jsonOutput {
				if err := writeJSON(a.env.Stdout, res); err != nil {
					return err
				}
			} else {
				printValidation(a.env.Stdout, res)
			}

			if !res.OK {
				return &reportedError{err: &pagepdf.ValidationError{Result: res}}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}
