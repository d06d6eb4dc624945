package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiCmd is a placeholder: the interactive dashboard is an out-of-scope
// external collaborator (spec Non-goals). It exists so the command surface
// named in spec §6 resolves, and so a future renderer has somewhere to
// attach without reshaping the CLI.
var tuiCmd = &cobra.Command{
	Use:    "tui",
	Short:  "Interactive terminal dashboard (not implemented)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "fnox tui: no interactive renderer is bundled; use `fnox list --values` or `fnox doctor`")
		return nil
	},
}
