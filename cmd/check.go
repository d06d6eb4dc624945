package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config structure and the provider-config reference graph without touching any backend",
	Long: `Runs the config loader, merger, and provider-config reference
resolver for the active profile without performing any provider I/O
(no READ/DECRYPT/TEST calls). Reports parse errors, import cycles,
unknown-provider references, and provider-config reference cycles.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	if err := config.Validate(e.Profile); err != nil {
		return err
	}

	errs := 0
	for name := range e.Profile.Providers {
		if err := e.CheckProviderRefs(context.Background(), name); err != nil {
			fmt.Printf("provider %-25s ERROR %v\n", name, err)
			errs++
			continue
		}
		fmt.Printf("provider %-25s references ok\n", name)
	}

	if errs > 0 {
		return fmt.Errorf("%d issue(s) found", errs)
	}
	fmt.Printf("config is valid for profile %q (%d providers, %d secrets)\n",
		e.Profile.Profile, len(e.Profile.Providers), len(e.Profile.Secrets))
	return nil
}
