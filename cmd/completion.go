package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/ferr"
)

func init() {
	rootCmd.AddCommand(completionCmd)
}

var completionCmd = &cobra.Command{
	Use:   "completion SHELL",
	Short: "Print a shell completion script",
	Long: `Generates a completion script for bash, zsh, fish or powershell. Load
it in the current shell to get tab completion for fnox's subcommands, flags
and (where declared) argument values.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE:      runCompletion,
}

func runCompletion(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(os.Stdout, true)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return ferr.New(ferr.Misuse, "unsupported shell %q (want bash, zsh, fish or powershell)", args[0])
	}
}
