package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/redact"
)

func init() {
	rootCmd.AddCommand(ciRedactCmd)
}

var ciRedactCmd = &cobra.Command{
	Use:   "ci-redact",
	Short: "Filter stdin, replacing any resolved secret value with ***",
	Long: `Resolves every binding in the active profile, then copies stdin to
stdout line by line with every occurrence of a resolved value replaced by
"***". Intended to wrap noisy CI commands: cmd | fnox ci-redact.`,
	Args: cobra.NoArgs,
	RunE: runCIRedact,
}

func runCIRedact(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	results, err := e.ResolveAll(context.Background())
	if err != nil {
		return err
	}

	values := make([]string, 0, len(results))
	for _, rv := range results {
		if rv.Present {
			values = append(values, rv.Value)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	for scanner.Scan() {
		fmt.Fprintln(writer, redact.Redact(scanner.Text(), values))
	}
	return scanner.Err()
}
