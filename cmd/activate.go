package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/ferr"
	"go.dot.industries/vx/internal/shellstate"
)

func init() {
	rootCmd.AddCommand(activateCmd)
}

var activateCmd = &cobra.Command{
	Use:   "activate SHELL",
	Short: "Print the shell snippet that installs the per-prompt hook",
	Long: `Prints a snippet for bash, zsh or fish that, once sourced from the
shell's rc file, runs "fnox hook-env" before every prompt and evaluates its
output - keeping exported secrets in sync with the active directory and
profile (spec §4.5).`,
	Args: cobra.ExactArgs(1),
	RunE: runActivate,
}

func runActivate(cmd *cobra.Command, args []string) error {
	sh, err := parseShell(args[0])
	if err != nil {
		return err
	}

	binary := "fnox"
	if exe, err := os.Executable(); err == nil {
		binary = filepath.Base(exe)
	}

	fmt.Fprint(cmd.OutOrStdout(), shellstate.ActivateScript(sh, binary))
	return nil
}

func parseShell(name string) (shellstate.Shell, error) {
	switch name {
	case "bash":
		return shellstate.Bash, nil
	case "zsh":
		return shellstate.Zsh, nil
	case "fish":
		return shellstate.Fish, nil
	default:
		return "", ferr.New(ferr.Misuse, "unsupported shell %q (want bash, zsh or fish)", name)
	}
}
