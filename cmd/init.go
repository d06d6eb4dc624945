package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter fnox.toml in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

const initTemplate = `# fnox.toml — see "fnox doctor" and "fnox check" to validate this file.
# root = true stops upward discovery at this directory.
root = true

[providers.local]
type = "plain"

[secrets]
# EXAMPLE = { provider = "local", value = "changeme" }
`

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(cwd, "fnox.toml")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(initTemplate), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("created %s\n", path)
	return nil
}
