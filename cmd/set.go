package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/ferr"
	"go.dot.industries/vx/internal/tomlfile"
)

var (
	flagSetProvider    string
	flagSetKeyName     string
	flagSetDescription string
)

func init() {
	setCmd.Flags().StringVarP(&flagSetProvider, "provider", "p", "", "provider to store the value with")
	setCmd.Flags().StringVarP(&flagSetKeyName, "key-name", "k", "", "provider-specific key/path name (defaults to KEY)")
	setCmd.Flags().StringVarP(&flagSetDescription, "description", "d", "", "human-readable description for the binding")
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Create or update a binding, writing ciphertext or a remote reference",
	Long: `If the provider supports ENCRYPT, the plaintext is encrypted and the
resulting ciphertext is written inline into the innermost writable
fnox.toml. If the provider supports WRITE, the plaintext is stored
remotely and only the returned reference is written locally. VALUE may be
omitted to read from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	if flagSetProvider == "" {
		return ferr.New(ferr.Misuse, "set requires --provider")
	}

	key := args[0]
	var plaintext string
	if len(args) == 2 {
		plaintext = args[1]
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading value from stdin: %w", err)
		}
		for i, l := range lines {
			if i > 0 {
				plaintext += "\n"
			}
			plaintext += l
		}
	}

	e, err := newEngine()
	if err != nil {
		return err
	}

	p, err := e.GetProvider(context.Background(), flagSetProvider)
	if err != nil {
		return err
	}

	keyName := flagSetKeyName
	if keyName == "" {
		keyName = key
	}

	caps := p.Capabilities()
	var value string
	switch {
	case caps.Encrypt:
		ct, err := p.Encrypt(context.Background(), plaintext)
		if err != nil {
			return ferr.Wrap(ferr.CryptoError, err, "encrypting %q", key)
		}
		value = ct
	case caps.Write:
		ref, err := p.Write(context.Background(), keyName, plaintext)
		if err != nil {
			return err
		}
		value = ref
	default:
		return ferr.New(ferr.WriteRefused, "provider %q supports neither ENCRYPT nor WRITE", flagSetProvider)
	}

	path, err := writableConfigPath()
	if err != nil {
		return err
	}

	fields := tomlfile.Fields{
		"provider": flagSetProvider,
		"value":    value,
	}
	if flagSetDescription != "" {
		fields["description"] = flagSetDescription
	}

	section := sectionPathForProfile(e.Profile.Profile, "secrets")
	if err := tomlfile.SetBinding(path, section, key, fields); err != nil {
		return err
	}

	fmt.Printf("set %s in %s\n", key, path)
	return nil
}
