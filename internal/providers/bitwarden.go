package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.dot.industries/vx/internal/provider"
)

// bitwardenProvider shells out to the `bw` CLI, declared as
// `type = "bitwarden"`. Requires BW_SESSION in the environment (spec §6).
// Grounded on the same subprocess pattern as password-store/1password.
type bitwardenProvider struct {
	provider.Base
}

func newBitwardenProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &bitwardenProvider{Base: provider.Base{ProviderName: name, ProviderType: "bitwarden"}}, nil
}

func (p *bitwardenProvider) Validate() error {
	return checkAvailable("bw")
}

func (p *bitwardenProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Test: true, MaxConcurrency: 4, Reauthenticate: true}
}

type bwItem struct {
	Login struct {
		Password string `json:"password"`
	} `json:"login"`
}

func (p *bitwardenProvider) Read(ctx context.Context, key string) (string, error) {
	out, err := runSubprocess(ctx, 0, "bw", os.Environ(), "get", "item", key)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return "", provider.NotFoundf("bitwarden: %q not found", key)
		}
		if strings.Contains(err.Error(), "session") {
			return "", provider.AuthExpiredf("bitwarden: vault is locked")
		}
		return "", fmt.Errorf("bitwarden: %w", err)
	}

	var item bwItem
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		return "", fmt.Errorf("bitwarden: parsing item %q: %w", key, err)
	}
	if item.Login.Password == "" {
		return "", provider.NotFoundf("bitwarden: %q has no login password", key)
	}
	return item.Login.Password, nil
}

func (p *bitwardenProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *bitwardenProvider) Test(ctx context.Context) error {
	if _, err := runSubprocess(ctx, 0, "bw", os.Environ(), "status"); err != nil {
		return fmt.Errorf("bitwarden: %w", err)
	}
	return nil
}
