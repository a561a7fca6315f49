package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/pipeline"
	"github.com/matzehuels/engraver/pkg/scorefile"
)

// layoutFlags are shared by layout and inspect.
type layoutFlags struct {
	inputFormat string
	noCache     bool
	fonts       []string
	opts        pipeline.Options
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "score format: json, yaml, toml (default: from file extension)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached layouts")
	cmd.Flags().BoolVar(&f.opts.JustifyFinalLine, "justify-final-line", false, "stretch the final line to the full width")
	cmd.Flags().StringVar(&f.opts.Fonts, "fonts", pipeline.DefaultFonts, "text measurement: builtin, estimate")
	cmd.Flags().StringArrayVar(&f.fonts, "font", nil, "extra font as family[:style]=url (repeatable)")
}

// resolve fills the input format from flags or the file extension.
func (f *layoutFlags) resolve(input string) (pipeline.Options, error) {
	opts := f.opts
	var (
		in  scorefile.Format
		err error
	)
	if f.inputFormat != "" {
		in, err = scorefile.ParseFormat(f.inputFormat)
	} else {
		in, err = scorefile.FormatFromPath(input)
	}
	if err != nil {
		return opts, err
	}
	opts.InputFormat = in
	return opts, nil
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		format string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [score.yaml]",
		Short: "Lay out a score document",
		Long: `Lay out a score document.

The score is read from a JSON, YAML or TOML file. Every line is laid out,
stacked below the previous one and justified to the page width. The result
lists each measure's origin and width and every element's position, in tenths.

Use "-o -" to write to stdout. Results are cached locally for faster
subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(args[0])
			if err != nil {
				return err
			}
			opts.OutputFormat = export.Format(format)
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache, flags.fonts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", string(pipeline.DefaultOutputFormat), "output format: json, yaml")
	flags.register(cmd)

	return cmd
}

// runLayout runs the pipeline on input and writes the layout.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, fontFlags []string) error {
	prog := newProgress(c.Logger)
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read score %s: %w", input, err)
	}

	sources, err := parseFontSources(fontFlags)
	if err != nil {
		return err
	}

	toStdout := output == "-"
	var spinOut io.Writer = os.Stderr
	if toStdout {
		spinOut = io.Discard
	}
	spinner := newSpinner(ctx, spinOut, "Loading fonts...")
	spinner.Start()
	defer spinner.Stop()

	runner, closeRunner, err := c.newRunner(ctx, noCache, opts.Fonts, sources)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()
	opts.Logger = c.Logger
	prog.stage("setup")

	spinner.SetMessage("Laying out " + filepath.Base(input) + "...")
	res, err := runner.Execute(ctx, data, opts)
	spinner.Stop()
	prog.stage("execute")
	if err != nil {
		if !toStdout {
			printError("Layout failed")
		}
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logResult(c.Logger, res)

	if toStdout {
		_, err := os.Stdout.Write(res.Output)
		return err
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout." + string(opts.OutputFormat)
	}
	if err := os.WriteFile(outputPath, res.Output, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done("Layout written")

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res)
	if res.Approximate {
		printWarning("Some text was measured without its font; positions are approximate")
	}
	printNewline()
	printNextStep("Browse", appName+" inspect "+input)

	return nil
}
