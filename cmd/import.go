package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.dot.industries/vx/internal/ferr"
	"go.dot.industries/vx/internal/tomlfile"
)

var (
	flagImportFile     string
	flagImportFormat   string
	flagImportProvider string
	flagImportFilter   string
	flagImportPrefix   string
)

func init() {
	importCmd.Flags().StringVarP(&flagImportFile, "input", "i", "", "file to import (required)")
	importCmd.Flags().StringVar(&flagImportFormat, "format", "env", "input format: env, json, yaml, toml")
	importCmd.Flags().StringVarP(&flagImportProvider, "provider", "p", "", "provider to store imported values with")
	importCmd.Flags().StringVar(&flagImportFilter, "filter", "", "only import keys matching this regex")
	importCmd.Flags().StringVar(&flagImportPrefix, "prefix", "", "prepend this prefix to every imported key")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse a file of key/value pairs and set each as a binding",
	Long: `Requires --provider: without it the command refuses to import,
even when the target config already names a provider for bindings of
this shape. Each entry is stored through that provider.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	if flagImportProvider == "" {
		return ferr.New(ferr.WriteRefused, "import without --provider would create plaintext bindings")
	}

	raw, err := os.ReadFile(flagImportFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", flagImportFile, err)
	}

	entries, err := parseImportFile(flagImportFormat, raw)
	if err != nil {
		return err
	}

	var filterRe *regexp.Regexp
	if flagImportFilter != "" {
		filterRe, err = regexp.Compile(flagImportFilter)
		if err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	p, err := e.GetProvider(context.Background(), flagImportProvider)
	if err != nil {
		return err
	}
	caps := p.Capabilities()

	path, err := writableConfigPath()
	if err != nil {
		return err
	}
	section := sectionPathForProfile(e.Profile.Profile, "secrets")

	count := 0
	for key, val := range entries {
		if filterRe != nil && !filterRe.MatchString(key) {
			continue
		}
		outKey := flagImportPrefix + key

		var value string
		switch {
		case caps.Encrypt:
			ct, err := p.Encrypt(context.Background(), val)
			if err != nil {
				return ferr.Wrap(ferr.CryptoError, err, "encrypting %q", outKey)
			}
			value = ct
		case caps.Write:
			ref, err := p.Write(context.Background(), outKey, val)
			if err != nil {
				return err
			}
			value = ref
		default:
			return ferr.New(ferr.WriteRefused, "provider %q supports neither ENCRYPT nor WRITE", flagImportProvider)
		}

		fields := tomlfile.Fields{"provider": flagImportProvider, "value": value}
		if err := tomlfile.SetBinding(path, section, outKey, fields); err != nil {
			return err
		}
		count++
	}

	fmt.Printf("imported %d binding(s) into %s\n", count, path)
	return nil
}

func parseImportFile(format string, raw []byte) (map[string]string, error) {
	switch format {
	case "env":
		out := make(map[string]string)
		scanner := bufio.NewScanner(strings.NewReader(string(raw)))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			idx := strings.IndexByte(line, '=')
			if idx < 0 {
				continue
			}
			key := strings.TrimSpace(line[:idx])
			val := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
			out[key] = val
		}
		return out, scanner.Err()
	case "json":
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		return m, nil
	case "yaml":
		var m map[string]string
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		return m, nil
	case "toml":
		var m map[string]string
		if err := toml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use env, json, yaml, or toml)", format)
	}
}
