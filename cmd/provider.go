package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/providers"
	"go.dot.industries/vx/internal/tomlfile"
)

func init() {
	providerCmd.AddCommand(providerListCmd, providerAddCmd, providerTestCmd)
	rootCmd.AddCommand(providerCmd)
}

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Inspect and manage provider declarations",
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers declared for the active profile, and every supported type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}

		names := make([]string, 0, len(e.Profile.Providers))
		for name := range e.Profile.Providers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-25s %s\n", name, e.Profile.Providers[name].Type)
		}

		fmt.Println("\nsupported types:")
		types := providers.NewRegistry().SupportedTypes()
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %s\n", t)
		}
		return nil
	},
}

var providerAddCmd = &cobra.Command{
	Use:   "add NAME --type TYPE [attr=value...]",
	Short: "Declare a new provider in the innermost writable config",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProviderAdd,
}

var flagProviderType string

func init() {
	providerAddCmd.Flags().StringVar(&flagProviderType, "type", "", "provider type tag (required)")
	_ = providerAddCmd.MarkFlagRequired("type")
}

func runProviderAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	fields := tomlfile.Fields{"type": flagProviderType}
	for _, kv := range args[1:] {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				fields[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	path, err := writableConfigPath()
	if err != nil {
		return err
	}
	section := sectionPathForProfile(e.Profile.Profile, "providers")
	if err := tomlfile.SetBinding(path, section, name, fields); err != nil {
		return err
	}

	fmt.Printf("added provider %s (%s) to %s\n", name, flagProviderType, path)
	return nil
}

var flagProviderTestAll bool

func init() {
	providerTestCmd.Flags().BoolVar(&flagProviderTestAll, "all", false, "test every declared provider")
}

var providerTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Call TEST() on one provider, or every provider with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProviderTest,
}

func runProviderTest(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	var names []string
	if flagProviderTestAll {
		for name := range e.Profile.Providers {
			names = append(names, name)
		}
		sort.Strings(names)
	} else {
		if len(args) != 1 {
			return fmt.Errorf("provider test requires NAME or --all")
		}
		names = []string{args[0]}
	}

	failures := 0
	for _, name := range names {
		p, err := e.GetProvider(context.Background(), name)
		if err != nil {
			fmt.Printf("%-25s CONSTRUCT FAILED: %v\n", name, err)
			failures++
			continue
		}
		if err := p.Test(context.Background()); err != nil {
			fmt.Printf("%-25s FAIL: %v\n", name, err)
			failures++
			continue
		}
		fmt.Printf("%-25s ok\n", name)
	}

	if failures > 0 {
		return fmt.Errorf("%d provider(s) failed", failures)
	}
	return nil
}
