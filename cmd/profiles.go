package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List profile names declared across the discovered config layers",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	layered, err := config.Discover(cwd, activeProfile())
	if err != nil {
		return err
	}

	seen := map[string]bool{"default": true}
	for _, layer := range layered.Layers {
		for name := range layer.Profiles {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	current := activeProfile()
	for _, name := range names {
		marker := "  "
		if name == current {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	return nil
}
