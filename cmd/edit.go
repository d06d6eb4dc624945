package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"go.dot.industries/vx/internal/tomlfile"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Decrypt all inline-ciphertext bindings into a temp file, open $EDITOR, then re-encrypt",
	Long: `Writes every inline-ciphertext binding's plaintext into a temporary
TOML file, opens it in $EDITOR, then re-encrypts every entry under its
provider's CURRENT recipients and writes the result back atomically
(fsync + rename), preserving unrelated config content.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	type editable struct {
		provider string
		value    string
	}
	plain := make(map[string]string)
	owners := make(map[string]editable)

	for key, b := range e.Profile.Secrets {
		if b.Provider == "" || b.Value == "" {
			continue
		}
		p, err := e.GetProvider(ctx, b.Provider)
		if err != nil {
			return err
		}
		if !p.Capabilities().Decrypt {
			continue
		}
		pt, err := p.Decrypt(ctx, b.Value)
		if err != nil {
			return fmt.Errorf("decrypting %q: %w", key, err)
		}
		plain[key] = pt
		owners[key] = editable{provider: b.Provider}
	}

	if len(plain) == 0 {
		fmt.Println("no inline-ciphertext bindings to edit")
		return nil
	}

	tmp, err := os.CreateTemp("", "fnox-edit-*.toml")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(plain); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp editable file: %w", err)
	}
	tmp.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	editCmd := exec.CommandContext(ctx, editor, tmpPath)
	editCmd.Stdin, editCmd.Stdout, editCmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return err
	}
	var updated map[string]string
	if err := toml.Unmarshal(edited, &updated); err != nil {
		return fmt.Errorf("parsing edited file: %w", err)
	}

	path, err := writableConfigPath()
	if err != nil {
		return err
	}
	section := sectionPathForProfile(e.Profile.Profile, "secrets")

	reencrypted := 0
	for key, pt := range updated {
		owner, ok := owners[key]
		if !ok {
			continue
		}
		p, err := e.GetProvider(ctx, owner.provider)
		if err != nil {
			return err
		}
		ct, err := p.Encrypt(ctx, pt)
		if err != nil {
			return fmt.Errorf("re-encrypting %q under %s's current recipients: %w", key, owner.provider, err)
		}
		b := e.Profile.Secrets[key]
		fields := tomlfile.Fields{"provider": owner.provider, "value": ct}
		if b.Description != "" {
			fields["description"] = b.Description
		}
		if err := tomlfile.SetBinding(path, section, key, fields); err != nil {
			return err
		}
		reencrypted++
	}

	fmt.Printf("re-encrypted %d binding(s) in %s\n", reencrypted, filepath.Base(path))
	return nil
}
