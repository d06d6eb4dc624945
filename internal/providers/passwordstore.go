package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.dot.industries/vx/internal/provider"
)

// passwordStoreProvider shells out to the `pass` CLI, declared as
// `type = "password-store"`. Directly grounded on
// systmms-dsops/internal/providers/pass.go.
type passwordStoreProvider struct {
	provider.Base
	storeDir string
	gpgKey   string
}

func newPasswordStoreProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &passwordStoreProvider{
		Base:     provider.Base{ProviderName: name, ProviderType: "password-store"},
		storeDir: attrString(attrs, "store_dir"),
		gpgKey:   attrString(attrs, "gpg_key"),
	}, nil
}

func (p *passwordStoreProvider) Validate() error {
	return checkAvailable("pass")
}

func (p *passwordStoreProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 4}
}

func (p *passwordStoreProvider) env() []string {
	env := os.Environ()
	if p.storeDir != "" {
		env = append(env, "PASSWORD_STORE_DIR="+p.storeDir)
	}
	if p.gpgKey != "" {
		env = append(env, "PASSWORD_STORE_KEY="+p.gpgKey)
	}
	return env
}

func (p *passwordStoreProvider) Read(ctx context.Context, key string) (string, error) {
	out, err := runSubprocess(ctx, 0, "pass", p.env(), "show", key)
	if err != nil {
		if strings.Contains(err.Error(), "not in the password store") {
			return "", provider.NotFoundf("password-store: %q not found", key)
		}
		return "", fmt.Errorf("password-store: %w", err)
	}

	// pass may emit multi-line output (password on the first line,
	// metadata below); the password is the first line.
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}
	return out, nil
}

func (p *passwordStoreProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *passwordStoreProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	if _, err := runSubprocessStdin(ctx, p.env(), plaintext, "pass", "insert", "-m", "-f", key); err != nil {
		return "", fmt.Errorf("password-store: %w", err)
	}
	return key, nil
}

func (p *passwordStoreProvider) Test(ctx context.Context) error {
	if _, err := runSubprocess(ctx, 0, "pass", p.env(), "ls"); err != nil {
		return fmt.Errorf("password-store: %w", err)
	}
	return nil
}
