package providers

import (
	"context"
	"fmt"

	sdk "github.com/bitwarden/sdk-go"

	"go.dot.industries/vx/internal/provider"
)

// bitwardenSecretsManagerProvider talks to Bitwarden Secrets Manager over
// its official Go SDK, declared as `type = "bitwarden-sm"` — distinct from
// the personal-vault `bitwarden` CLI provider. Reference is the secret's
// UUID. New addition to the domain stack: the retrieval pack never touches
// Bitwarden SM, but the personal-vault `bw` CLI pattern in bitwarden.go
// grounds the general shape (read by id, organization-scoped).
type bitwardenSecretsManagerProvider struct {
	provider.Base
	client sdk.BitwardenClientInterface
	orgID  string
}

func newBitwardenSecretsManagerProvider(name string, attrs map[string]any) (provider.Provider, error) {
	apiURL := firstNonEmpty(attrString(attrs, "api_url"), "https://api.bitwarden.com")
	identityURL := firstNonEmpty(attrString(attrs, "identity_url"), "https://identity.bitwarden.com")

	client, err := sdk.NewBitwardenClient(&apiURL, &identityURL)
	if err != nil {
		return nil, fmt.Errorf("bitwarden-sm: creating client: %w", err)
	}

	token := attrString(attrs, "access_token")
	if token != "" {
		if err := client.AccessTokenLogin(token, nil); err != nil {
			return nil, fmt.Errorf("bitwarden-sm: authenticating: %w", err)
		}
	}

	return &bitwardenSecretsManagerProvider{
		Base:   provider.Base{ProviderName: name, ProviderType: "bitwarden-sm"},
		client: client,
		orgID:  attrString(attrs, "organization_id"),
	}, nil
}

func (p *bitwardenSecretsManagerProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 8}
}

func (p *bitwardenSecretsManagerProvider) Read(ctx context.Context, key string) (string, error) {
	secret, err := p.client.Secrets().Get(key)
	if err != nil {
		return "", provider.NotFoundf("bitwarden-sm: %q: %v", key, err)
	}
	return secret.Value, nil
}

func (p *bitwardenSecretsManagerProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *bitwardenSecretsManagerProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	existing, err := p.client.Secrets().Get(key)
	if err != nil {
		return "", fmt.Errorf("bitwarden-sm: write requires an existing secret id: %w", err)
	}
	if _, err := p.client.Secrets().Update(key, existing.Key, plaintext, existing.Note, p.orgID, []string{existing.ProjectID}); err != nil {
		return "", fmt.Errorf("bitwarden-sm: %w", err)
	}
	return key, nil
}

func (p *bitwardenSecretsManagerProvider) Test(ctx context.Context) error {
	if _, err := p.client.Projects().List(p.orgID); err != nil {
		return fmt.Errorf("bitwarden-sm: %w", err)
	}
	return nil
}
