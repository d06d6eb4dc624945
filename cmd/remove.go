package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/tomlfile"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove KEY",
	Short: "Remove a binding from the innermost writable config",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	path, err := writableConfigPath()
	if err != nil {
		return err
	}

	section := sectionPathForProfile(e.Profile.Profile, "secrets")
	if err := tomlfile.RemoveBinding(path, section, args[0]); err != nil {
		return err
	}

	fmt.Printf("removed %s from %s\n", args[0], path)
	return nil
}
