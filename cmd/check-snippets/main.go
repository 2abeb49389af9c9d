// Command check-snippets runs documentation code snippets through a code
// formatter and prints a JSON array with one result per snippet.
//
//	check-snippets <snippets.json>
package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/silver2dream/build-utils/internal/cli"
	toolerrors "github.com/silver2dream/build-utils/internal/errors"
	"github.com/silver2dream/build-utils/internal/output"
	"github.com/silver2dream/build-utils/internal/snippetfmt"
)

const tool = "check-snippets"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return cli.Run(newRootCmd(), args, stdout, stderr)
}

func newRootCmd() *cobra.Command {
	var (
		opts      cli.Options
		formatter string
		timeout   time.Duration
	)

	cmd := cli.NewRootCommand(tool, "check-snippets <snippets.json>",
		"Check code snippets against a formatter", &opts)
	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			output.New(cmd.OutOrStdout()).Info("No snippet file given, nothing to check.")
			return nil
		}

		env, err := opts.Setup(tool, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if !cmd.Flags().Changed("formatter") {
			formatter = env.Config.SnippetFmt.Command
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = env.Config.SnippetTimeout()
		}
		f, err := snippetfmt.NewExecFormatter(formatter, timeout)
		if err != nil {
			return toolerrors.NewUsageError(err.Error())
		}

		snippets, err := snippetfmt.LoadSnippets(args[0])
		if err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to read snippets", err)
		}
		env.Logger.Debug("checking snippets", "count", len(snippets), "formatter", f.String(), "timeout", timeout)

		checker := snippetfmt.NewChecker(f,
			snippetfmt.WithCacheSize(env.Config.SnippetFmt.CacheSize),
			snippetfmt.WithLogger(env.Logger),
		)
		results := checker.Check(cmd.Context(), snippets)
		if err := snippetfmt.EncodeResults(env.Stdout, results); err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to write results", err)
		}

		if opts.Verbose {
			s := snippetfmt.Summarize(results)
			out := output.New(env.Stderr)
			if s.Errors > 0 {
				out.Warning("%d snippets: %d unchanged, %d need formatting, %d failed", s.Total, s.Success, s.Updated, s.Errors)
			} else {
				out.Success("%d snippets: %d unchanged, %d need formatting", s.Total, s.Success, s.Updated)
			}
		}
		return nil
	}

	flags := cmd.Flags()
	flags.StringVar(&formatter, "formatter", snippetfmt.DefaultCommand, "formatter command; reads code on stdin, writes it to stdout")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "per-snippet formatter timeout (0 disables)")
	return cmd
}
