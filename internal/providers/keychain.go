package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"go.dot.industries/vx/internal/provider"
)

// keychainProvider stores secrets in the OS-native keychain/credential
// store, declared as `type = "keychain"`. Grounded on systmms-dsops's
// go.mod, which carries zalando/go-keyring as a direct dependency.
type keychainProvider struct {
	provider.Base
	service string
}

func newKeychainProvider(name string, attrs map[string]any) (provider.Provider, error) {
	service := attrString(attrs, "service")
	if service == "" {
		service = "fnox/" + name
	}
	return &keychainProvider{
		Base:    provider.Base{ProviderName: name, ProviderType: "keychain"},
		service: service,
	}, nil
}

func (p *keychainProvider) Validate() error { return nil }

func (p *keychainProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 4}
}

func (p *keychainProvider) Read(ctx context.Context, key string) (string, error) {
	v, err := keyring.Get(p.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", provider.NotFoundf("keychain: account %q not found", key)
		}
		return "", fmt.Errorf("keychain: %w", err)
	}
	return v, nil
}

func (p *keychainProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *keychainProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	if err := keyring.Set(p.service, key, plaintext); err != nil {
		return "", fmt.Errorf("keychain: %w", err)
	}
	return key, nil
}

func (p *keychainProvider) Test(ctx context.Context) error {
	_, err := keyring.Get(p.service, "__fnox_test_probe__")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("keychain: %w", err)
}
