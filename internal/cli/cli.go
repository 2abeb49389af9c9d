// Package cli holds the command wiring shared by the build utility binaries:
// common flags, config and logger setup, and error-to-exit-code mapping.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/silver2dream/build-utils/internal/buildinfo"
	"github.com/silver2dream/build-utils/internal/config"
	toolerrors "github.com/silver2dream/build-utils/internal/errors"
	"github.com/silver2dream/build-utils/internal/logging"
	"github.com/silver2dream/build-utils/internal/output"
)

// Options are the flags every tool accepts.
type Options struct {
	ConfigPath string
	Verbose    bool
	LogDir     string
}

// Env is what a command's RunE works with.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer

	cleanup func() error
}

// Close flushes and closes the log file, if any.
func (e *Env) Close() {
	if e.cleanup != nil {
		_ = e.cleanup()
	}
}

// NewRootCommand creates a tool's root command with the shared flags bound
// to opts.
func NewRootCommand(tool, use, short string, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(buildinfo.String(tool) + "\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "path to tools.yaml (default $"+config.EnvConfigPath+")")
	flags.BoolVar(&opts.Verbose, "verbose", false, "enable debug logging on stderr")
	flags.StringVar(&opts.LogDir, "log-dir", "", "also write logs to rotating files in this directory")
	return cmd
}

// Setup loads configuration and builds the logger for tool.
func (o *Options) Setup(tool string, cmd *cobra.Command) (*Env, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, cleanup, err := logging.Setup(logging.Config{
		Tool:    tool,
		Verbose: o.Verbose,
		Dir:     o.LogDir,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, toolerrors.NewGeneralErrorWithCause("failed to open log directory", err)
	}

	logger.Debug("configuration loaded", "config", o.ConfigPath)
	return &Env{
		Config:  cfg,
		Logger:  logger,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		cleanup: cleanup,
	}, nil
}

// Run executes cmd with args and returns the process exit code. Errors are
// printed to stderr.
func Run(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		out := output.New(stderr)
		out.Error("%v", err)
		if toolerrors.IsConfigError(err) {
			out.Info("Check the file given by --config or $%s.", config.EnvConfigPath)
		}
		return toolerrors.GetExitCode(err)
	}
	return toolerrors.ExitSuccess
}
