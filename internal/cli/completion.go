package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/pipeline"
	"github.com/matzehuels/engraver/pkg/scorefile"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for engraver.

Bash:
  $ source <(engraver completion bash)

Zsh:
  $ engraver completion zsh > "${fpath[1]}/_engraver"

Fish:
  $ engraver completion fish > ~/.config/fish/completions/engraver.fish

PowerShell:
  PS> engraver completion powershell | Out-String | Invoke-Expression

Flag values (--fonts, --format, --input-format, --kind) complete as well.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// scoreExtensions are the file extensions offered for score arguments.
var scoreExtensions = []string{"json", "yaml", "yml", "toml"}

// registerCompletions wires value completion for the domain flags of every
// subcommand of root.
func registerCompletions(root *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	flagValues := map[string][]string{
		"fonts":        {pipeline.FontsBuiltin, pipeline.FontsEstimate},
		"format":       {string(export.FormatJSON), string(export.FormatYAML)},
		"input-format": {string(scorefile.FormatJSON), string(scorefile.FormatYAML), string(scorefile.FormatTOML)},
		"kind":         {cache.KindLayout, cache.KindExport, cache.KindFont},
		"log-format":   {LogFormatText, LogFormatJSON, LogFormatLogfmt},
	}

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, values := range flagValues {
			if cmd.Flag(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, fixed(values...))
			}
		}
		if cmd.Name() == "layout" || cmd.Name() == "inspect" {
			cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
				return scoreExtensions, cobra.ShellCompDirectiveFilterFileExt
			}
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
