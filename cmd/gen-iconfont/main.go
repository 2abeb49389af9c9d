// Command gen-iconfont writes the icon font used by the web-font screenshot
// tests: a placeholder glyph plus identical squares on "A" and "B".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/silver2dream/build-utils/internal/cli"
	toolerrors "github.com/silver2dream/build-utils/internal/errors"
	"github.com/silver2dream/build-utils/internal/fsutil"
	"github.com/silver2dream/build-utils/internal/iconfont"
	"github.com/silver2dream/build-utils/internal/output"
)

const tool = "gen-iconfont"

// defaultDir is where the screenshot tests serve fonts from.
const defaultDir = "webfont"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return cli.Run(newRootCmd(), args, stdout, stderr)
}

func newRootCmd() *cobra.Command {
	var (
		opts   cli.Options
		format string
		out    string
		verify bool
	)

	cmd := cli.NewRootCommand(tool, "gen-iconfont", "Generate the test icon font", &opts)
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		env, err := opts.Setup(tool, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if !cmd.Flags().Changed("format") {
			format = env.Config.IconFont.Format
		}
		fontFormat, err := iconfont.ParseFormat(format)
		if err != nil {
			return toolerrors.NewUsageError(err.Error())
		}
		if !cmd.Flags().Changed("output") {
			out = env.Config.IconFont.Output
		}
		if out == "" {
			out = filepath.Join(defaultDir, "iconfont."+fontFormat.Ext())
		}

		spec := iconfont.DefaultSpec()
		font, err := iconfont.Build(spec)
		if err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to build font", err)
		}
		data, err := iconfont.Encode(font, fontFormat)
		if err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to encode font", err)
		}
		env.Logger.Debug("font encoded", "format", fontFormat, "glyphs", font.NumGlyphs(), "bytes", len(data))
		for _, g := range spec.Glyphs {
			if g.CodePoint != 0 {
				env.Logger.Debug("glyph mapped", "name", g.Name, "rune", string(g.CodePoint), "index", font.GlyphIndex(g.CodePoint))
			}
		}

		if err := fsutil.WriteFileAtomic(out, data, 0o644); err != nil {
			return toolerrors.NewGeneralErrorWithCause("failed to write font", err)
		}

		if verify {
			written, err := os.ReadFile(out)
			if err != nil {
				return toolerrors.NewGeneralErrorWithCause("failed to read back font", err)
			}
			if err := iconfont.Verify(written, spec); err != nil {
				return toolerrors.NewValidationErrorWithCause(fmt.Sprintf("%s is not valid", out), err)
			}
			env.Logger.Debug("font verified", "path", out)
		}

		msg := output.New(env.Stdout)
		msg.Success("Font saved to %s", msg.Bold(out))
		return nil
	}

	flags := cmd.Flags()
	flags.StringVar(&format, "format", string(iconfont.DefaultFormat), "font format: woff2, woff or ttf")
	flags.StringVarP(&out, "output", "o", "", "output path (default webfont/iconfont.<format>)")
	flags.BoolVar(&verify, "verify", false, "re-read and check the written font")
	return cmd
}
