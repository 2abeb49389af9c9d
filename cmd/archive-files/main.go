// Command archive-files prints the build artifacts to archive for a target
// architecture, one filename per line.
//
//	archive-files <32bit|64bit> <descriptor-file>
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/silver2dream/build-utils/internal/archive"
	"github.com/silver2dream/build-utils/internal/cli"
	toolerrors "github.com/silver2dream/build-utils/internal/errors"
)

const tool = "archive-files"

const usage = "usage: archive-files <32bit|64bit> <descriptor-file>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return cli.Run(newRootCmd(), args, stdout, stderr)
}

func newRootCmd() *cobra.Command {
	var (
		opts cli.Options
		glob bool
	)

	cmd := cli.NewRootCommand(tool, "archive-files <32bit|64bit> <descriptor-file>",
		"Print the files to archive for a target architecture", &opts)
	cmd.Args = func(_ *cobra.Command, args []string) error {
		if len(args) != 2 {
			return toolerrors.NewUsageError(usage)
		}
		if _, err := archive.ParseArch(args[0]); err != nil {
			return toolerrors.NewUsageError(fmt.Sprintf("%v\n%s", err, usage))
		}
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := opts.Setup(tool, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		arch, _ := archive.ParseArch(args[0])
		descs, err := archive.LoadFile(args[1])
		if err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to load descriptor file", err)
		}

		useGlob := env.Config.Archive.Glob
		if cmd.Flags().Changed("glob") {
			useGlob = glob
		}
		sel := archive.NewSelector(
			archive.WithExclusions(env.Config.Archive.Exclude),
			archive.WithGlobMatching(useGlob),
		)
		env.Logger.Debug("selecting", "arch", arch, "descriptors", len(descs), "exclusions", sel.Exclusions(), "glob", useGlob)

		for _, d := range descs {
			reason := sel.Explain(arch, d)
			env.Logger.Debug("descriptor", "filename", d.Filename, "result", reason.String())
			if reason == archive.Selected {
				fmt.Fprintln(env.Stdout, d.Filename)
			}
		}
		return nil
	}

	cmd.Flags().BoolVar(&glob, "glob", false, "treat exclusion entries as glob patterns")
	return cmd
}
