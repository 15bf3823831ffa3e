package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-pagepdf/internal/config"
)

// configEnvVar names a config file when --config is not given.
const configEnvVar = "PAGEPDF_CONFIG"

// app holds state shared by all commands of one invocation.
type app struct {
	env *Environment
	cfg *config.Config

	configPath string
	verbose    bool
}

func newApp(env *Environment) *app {
	return &app{env: env, cfg: config.DefaultConfig()}
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	a := newApp(env)
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(env.Stderr, "Error:", err.Error()+a.hintFor(err))
	}
	return exitCodeFor(err)
}

// rootCommand creates the root cobra command with all subcommands registered.
func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pagepdf",
		Short: "Validate page-layout documents and render them to print-ready PDF",
		Long: `pagepdf checks page-layout documents for structural errors and print
safety, then renders them to PDF with headless Chrome.

Documents are read from a file argument, or from stdin when the argument
is missing or "-". Both the current contract and the legacy frame-based
contract are accepted.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path or name (env "+configEnvVar+")")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	root.AddCommand(a.validateCommand())
	root.AddCommand(a.preflightCommand())
	root.AddCommand(a.renderCommand())
	root.AddCommand(a.hashCommand())
	root.AddCommand(a.doctorCommand())

	return root
}

// setup loads the config file and attaches the logger to the command context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" && a.env.Getenv != nil {
		path = a.env.Getenv(configEnvVar)
	}
	if path != "" {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			a.configPath = path
			return err
		}
		a.cfg = cfg
	}

	logger := newLogger(a.env.Stderr, a.cfg.Log.Level, a.cfg.Log.Format, a.verbose)
	if path != "" {
		logger.Debug("config loaded", "path", path)
	}
	cmd.SetContext(withLogger(cmd.Context(), logger))
	return nil
}

// cobraArgs wraps a positional argument validator so that its errors map to
// the usage exit code.
func cobraArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
