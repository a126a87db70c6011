package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkwell version",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "inkwell", inkwell.VersionTag())
		},
	}
}
