package providers

import (
	"context"
	"fmt"
	"strings"

	"go.dot.industries/vx/internal/provider"
	"go.dot.industries/vx/internal/vault"
)

// vaultProvider is the remote-storage provider declared as `type = "vault"`,
// grounded directly on the teacher's internal/vault package (client.go,
// kv.go, oidc.go, approle.go), generalized from vx's single
// one-client-per-process model to a provider instance per declared
// `[providers.NAME]` block.
type vaultProvider struct {
	provider.Base
	client *vault.Client
	cache  *vaultKVCache
}

func newVaultProvider(name string, attrs map[string]any) (provider.Provider, error) {
	client, err := configureVaultClient(attrs)
	if err != nil {
		return nil, err
	}
	return &vaultProvider{
		Base:   provider.Base{ProviderName: name, ProviderType: "vault"},
		client: client,
		cache:  newVaultKVCache(0),
	}, nil
}

// readPathCached reads a Vault KV path, serving from cache when fresh.
func (p *vaultProvider) readPathCached(path string) (map[string]string, error) {
	if data, ok := p.cache.get(path); ok {
		return data, nil
	}
	data, err := p.client.ReadKV(path)
	if err != nil {
		return nil, err
	}
	p.cache.set(path, data)
	return data, nil
}

func (p *vaultProvider) Validate() error {
	if p.client == nil {
		return fmt.Errorf("vault: client not configured")
	}
	return nil
}

// configureVaultClient finalizes the client from the provider's attribute
// map and performs the configured auth method.
func configureVaultClient(attrs map[string]any) (*vault.Client, error) {
	address, err := requireAttrString(attrs, "address")
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	basePath := attrString(attrs, "base_path")
	if basePath == "" {
		basePath = "secret"
	}
	// ${env} in base_path is interpolated from the provider's own `environment`
	// attribute, adapted from the teacher's internal/resolver/template.go -
	// generalized since providers here have no ambient "current environment".
	if env := attrString(attrs, "environment"); env != "" {
		basePath = strings.ReplaceAll(basePath, "${env}", env)
	}

	client, err := vault.NewClient(address, basePath)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}

	switch method := attrString(attrs, "auth_method"); method {
	case "", "token":
		if token := attrString(attrs, "token"); token != "" {
			client.SetToken(token)
		}
	case "approle":
		roleID := attrString(attrs, "role_id")
		secretID := attrString(attrs, "secret_id")
		if err := vault.AppRoleAuth(client, roleID, secretID); err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
	case "oidc":
		role := attrString(attrs, "role")
		if err := vault.OIDCAuth(client, role); err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
	default:
		return nil, fmt.Errorf("vault: unknown auth_method %q", method)
	}

	return client, nil
}

func (p *vaultProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 10, Reauthenticate: true}
}

// splitVaultRef splits a binding's `value` ("path/to/secret/field") at the
// last slash into a KV path and a field name, the same convention vx's
// resolver/grouper.go uses for Vault path interpolation.
func splitVaultRef(ref string) (path string, field string, err error) {
	idx := strings.LastIndex(ref, "/")
	if idx <= 0 || idx == len(ref)-1 {
		return "", "", fmt.Errorf("vault: reference %q must be of the form path/to/secret/field", ref)
	}
	return ref[:idx], ref[idx+1:], nil
}

func (p *vaultProvider) Read(ctx context.Context, key string) (string, error) {
	path, field, err := splitVaultRef(key)
	if err != nil {
		return "", err
	}

	data, err := p.readPathCached(path)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	v, ok := data[field]
	if !ok {
		return "", provider.NotFoundf("vault: field %q not found at %q", field, path)
	}
	return v, nil
}

// BatchRead groups keys by KV path so that several bindings backed by the
// same Vault secret (e.g. DB_USER and DB_PASS both under "myapp/db") share
// one round-trip instead of one each.
func (p *vaultProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	groups, malformed := groupVaultKeysByPath(keys)

	results := make(map[string]provider.Result, len(keys))
	for _, key := range malformed {
		results[key] = provider.Result{Err: fmt.Errorf("vault: reference %q must be of the form path/to/secret/field", key)}
	}

	for path, mappings := range groups {
		data, err := p.readPathCached(path)
		if err != nil {
			wrapped := fmt.Errorf("vault: %w", err)
			for _, m := range mappings {
				results[m.fullKey] = provider.Result{Err: wrapped}
			}
			continue
		}
		for _, m := range mappings {
			v, ok := data[m.field]
			if !ok {
				results[m.fullKey] = provider.Result{Err: provider.NotFoundf("vault: field %q not found at %q", m.field, m.path)}
				continue
			}
			results[m.fullKey] = provider.Result{Value: v}
		}
	}

	return results, nil
}

func (p *vaultProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	path, field, err := splitVaultRef(key)
	if err != nil {
		return "", err
	}
	if err := p.client.WriteKV(path, field, plaintext); err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	p.cache.invalidate(path)
	return key, nil
}

func (p *vaultProvider) Test(ctx context.Context) error {
	if !p.client.IsAuthenticated() {
		return fmt.Errorf("vault: not authenticated")
	}
	return nil
}
