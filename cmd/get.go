package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/ferr"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Resolve a single binding and print its value to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	rv, err := e.ResolveBinding(context.Background(), args[0])
	if err != nil {
		return err
	}

	if !rv.Present {
		if rv.Missing != nil && rv.Missing.Policy == "error" {
			return ferr.New(ferr.MissingSecret, "%q has no value", args[0])
		}
		return nil
	}

	// Fprint never appends a newline, so the resolved value's own trailing
	// newline (or lack of one) passes through untouched (spec §4.6).
	fmt.Fprint(os.Stdout, rv.Value)
	return nil
}
