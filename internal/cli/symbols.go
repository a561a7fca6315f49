package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/symbols"
)

// symbolsCommand lists the registered symbol types.
func (c *CLI) symbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the symbol types a score may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tag := range symbols.NewRegistry().Tags() {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}
