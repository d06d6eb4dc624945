package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/config"
	"go.dot.industries/vx/internal/ferr"
)

var (
	flagListValues   bool
	flagListComplete bool
)

func init() {
	listCmd.Flags().BoolVar(&flagListValues, "values", false, "run full resolution and show values, not just keys")
	listCmd.Flags().BoolVar(&flagListComplete, "complete", false, "emit a flat newline-separated key list for shell completion")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Enumerate bindings for the active profile",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	keys := sortedBindingKeys(e.Profile.Secrets)

	if flagListComplete {
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	if !flagListValues {
		for _, k := range keys {
			b := e.Profile.Secrets[k]
			fmt.Printf("%-35s %s\n", k, describeBinding(b))
		}
		return nil
	}

	results, err := e.ResolveAll(context.Background())
	if err != nil {
		return err
	}

	var missing []string
	for _, k := range keys {
		rv := results[k]
		if !rv.Present {
			if rv.Missing != nil && rv.Missing.Policy == "error" {
				missing = append(missing, k)
			}
			continue
		}
		fmt.Printf("%s=%s\n", k, rv.Value)
	}

	if len(missing) > 0 {
		return ferr.New(ferr.MissingSecret, "required secrets have no value: %v", missing)
	}
	return nil
}

func describeBinding(b config.Binding) string {
	switch {
	case b.Description != "":
		return b.Description
	case b.Provider != "":
		return fmt.Sprintf("provider=%s value=%s", b.Provider, b.Value)
	case b.Default != "":
		return fmt.Sprintf("default=%s", b.Default)
	default:
		return "(env only)"
	}
}

func sortedBindingKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
