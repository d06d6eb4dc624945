package providers

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"go.dot.industries/vx/internal/provider"
)

// azureSecretManagerProvider reads/writes Azure Key Vault secrets,
// declared as `type = "azure-sm"`. Reference is the secret name; the
// vault URL is a required attribute.
type azureSecretManagerProvider struct {
	provider.Base
	client *azsecrets.Client
}

func newAzureSecretManagerProvider(name string, attrs map[string]any) (provider.Provider, error) {
	vaultURL := attrString(attrs, "vault_url")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure-sm: obtaining credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure-sm: creating client: %w", err)
	}
	return &azureSecretManagerProvider{
		Base:   provider.Base{ProviderName: name, ProviderType: "azure-sm"},
		client: client,
	}, nil
}

func (p *azureSecretManagerProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 10}
}

func (p *azureSecretManagerProvider) Read(ctx context.Context, key string) (string, error) {
	resp, err := p.client.GetSecret(ctx, key, "", nil)
	if err != nil {
		return "", provider.NotFoundf("azure-sm: %q: %v", key, err)
	}
	return *resp.Value, nil
}

func (p *azureSecretManagerProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *azureSecretManagerProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	_, err := p.client.SetSecret(ctx, key, azsecrets.SetSecretParameters{Value: to.Ptr(plaintext)}, nil)
	if err != nil {
		return "", fmt.Errorf("azure-sm: %w", err)
	}
	return key, nil
}

func (p *azureSecretManagerProvider) Test(ctx context.Context) error {
	pager := p.client.NewListSecretPropertiesPager(nil)
	if pager.More() {
		if _, err := pager.NextPage(ctx); err != nil {
			return fmt.Errorf("azure-sm: %w", err)
		}
	}
	return nil
}

// azureKMSProvider performs envelope encrypt/decrypt via Azure Key Vault
// keys, declared as `type = "azure-kms"`.
type azureKMSProvider struct {
	provider.Base
	client    *azkeys.Client
	keyName   string
	algorithm azkeys.JSONWebKeyEncryptionAlgorithm
}

func newAzureKMSProvider(name string, attrs map[string]any) (provider.Provider, error) {
	vaultURL := attrString(attrs, "vault_url")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure-kms: obtaining credential: %w", err)
	}
	client, err := azkeys.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure-kms: creating client: %w", err)
	}
	return &azureKMSProvider{
		Base:      provider.Base{ProviderName: name, ProviderType: "azure-kms"},
		client:    client,
		keyName:   attrString(attrs, "key_name"),
		algorithm: azkeys.JSONWebKeyEncryptionAlgorithmRSAOAEP256,
	}, nil
}

func (p *azureKMSProvider) Validate() error {
	if p.keyName == "" {
		return fmt.Errorf("azure-kms: missing required attribute %q", "key_name")
	}
	return nil
}

func (p *azureKMSProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Decrypt: true, Encrypt: true, Test: true, MaxConcurrency: 10}
}

func (p *azureKMSProvider) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("azure-kms: ciphertext is not valid base64: %w", err)
	}
	resp, err := p.client.Decrypt(ctx, p.keyName, "", azkeys.KeyOperationParameters{
		Algorithm: &p.algorithm,
		Value:     blob,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("azure-kms: %w", err)
	}
	return string(resp.Result), nil
}

func (p *azureKMSProvider) Encrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := p.client.Encrypt(ctx, p.keyName, "", azkeys.KeyOperationParameters{
		Algorithm: &p.algorithm,
		Value:     []byte(plaintext),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("azure-kms: %w", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Result), nil
}

func (p *azureKMSProvider) Test(ctx context.Context) error {
	_, err := p.client.GetKey(ctx, p.keyName, "", nil)
	if err != nil {
		return fmt.Errorf("azure-kms: %w", err)
	}
	return nil
}
