package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run config validation plus a live TEST() against every configured provider",
	Long: `Like check, but additionally constructs and calls TEST() on every
provider declared in the active profile, reporting a per-provider
pass/fail table. Unlike check, doctor performs real network/subprocess
I/O against configured backends.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	if err := config.Validate(e.Profile); err != nil {
		return err
	}

	names := make([]string, 0, len(e.Profile.Providers))
	for name := range e.Profile.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := context.Background()
	failures := 0

	for _, name := range names {
		decl := e.Profile.Providers[name]
		p, err := e.GetProvider(ctx, name)
		if err != nil {
			fmt.Printf("%-25s %-15s CONSTRUCT FAILED: %v\n", name, decl.Type, err)
			failures++
			continue
		}
		if err := p.Test(ctx); err != nil {
			fmt.Printf("%-25s %-15s FAIL: %v\n", name, decl.Type, err)
			failures++
			continue
		}
		fmt.Printf("%-25s %-15s ok\n", name, decl.Type)
	}

	if failures > 0 {
		return fmt.Errorf("%d provider(s) failed TEST()", failures)
	}
	return nil
}
