package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/redact"
)

var flagScanPath string

func init() {
	scanCmd.Flags().StringVar(&flagScanPath, "path", ".", "root directory to scan")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk the working tree for literal occurrences of resolved secret values",
	Long: `Resolves every binding in the active profile, then walks --path
looking for any resolved value appearing verbatim in any file under it
(whether or not the file is tracked by version control) - catching
accidental plaintext leakage into the working tree. Skips .git
and fnox.toml/fnox.*.toml themselves (which legitimately hold
ciphertext/references).`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	results, err := e.ResolveAll(context.Background())
	if err != nil {
		return err
	}

	values := make(map[string]string, len(results))
	for key, rv := range results {
		if rv.Present {
			values[key] = rv.Value
		}
	}

	var occurrences []redact.Occurrence
	err = filepath.WalkDir(flagScanPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		base := filepath.Base(path)
		if base == "fnox.toml" || strings.HasPrefix(base, "fnox.") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable file: skip, don't fail the whole scan
		}
		occurrences = append(occurrences, redact.Scan(path, string(content), values)...)
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].Path != occurrences[j].Path {
			return occurrences[i].Path < occurrences[j].Path
		}
		return occurrences[i].Line < occurrences[j].Line
	})

	for _, o := range occurrences {
		fmt.Printf("%s:%d: plaintext occurrence of %q\n", o.Path, o.Line, o.Key)
	}

	if len(occurrences) > 0 {
		return fmt.Errorf("found %d plaintext secret occurrence(s)", len(occurrences))
	}
	return nil
}
