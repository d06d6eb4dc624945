package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.dot.industries/vx/internal/ferr"
)

var flagExportFormat string

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "env", "output format: env, json, yaml, toml")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Resolve all bindings for the active profile and serialize them",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	results, err := e.ResolveAll(context.Background())
	if err != nil {
		return err
	}

	values := make(map[string]string, len(results))
	var missing []string
	for key, rv := range results {
		if !rv.Present {
			if rv.Missing != nil && rv.Missing.Policy == "error" {
				missing = append(missing, key)
			}
			continue
		}
		values[key] = rv.Value
	}
	if len(missing) > 0 {
		return ferr.New(ferr.MissingSecret, "required secrets have no value: %v", missing)
	}

	return writeExport(flagExportFormat, values)
}

func writeExport(format string, values map[string]string) error {
	switch format {
	case "env":
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%s\n", k, values[k])
		}
		return nil
	case "json":
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(values)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	case "toml":
		out, err := toml.Marshal(values)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use env, json, yaml, or toml)", format)
	}
}
