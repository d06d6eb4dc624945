package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.dot.industries/vx/internal/provider"
)

func gcpClientOptions(attrs map[string]any) []option.ClientOption {
	var opts []option.ClientOption
	if cred := attrString(attrs, "credentials_file"); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}
	return opts
}

// gcpSecretManagerProvider reads/writes GCP Secret Manager secrets,
// declared as `type = "gcp-sm"`. Reference is
// "projects/P/secrets/NAME/versions/latest" or bare "NAME" combined with
// the provider's configured project.
type gcpSecretManagerProvider struct {
	provider.Base
	client  *secretmanager.Client
	project string
}

func newGCPSecretManagerProvider(name string, attrs map[string]any) (provider.Provider, error) {
	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx, gcpClientOptions(attrs)...)
	if err != nil {
		return nil, fmt.Errorf("gcp-sm: creating client: %w", err)
	}
	return &gcpSecretManagerProvider{
		Base:    provider.Base{ProviderName: name, ProviderType: "gcp-sm"},
		client:  client,
		project: attrString(attrs, "project"),
	}, nil
}

func (p *gcpSecretManagerProvider) Validate() error {
	if p.project == "" {
		return fmt.Errorf("gcp-sm: missing required attribute %q", "project")
	}
	return nil
}

func (p *gcpSecretManagerProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 10}
}

func (p *gcpSecretManagerProvider) versionName(key string) string {
	if strings.HasPrefix(key, "projects/") {
		return key
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", p.project, key)
}

func (p *gcpSecretManagerProvider) Read(ctx context.Context, key string) (string, error) {
	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: p.versionName(key),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", provider.NotFoundf("gcp-sm: %q not found", key)
		}
		return "", fmt.Errorf("gcp-sm: %w", err)
	}
	return string(resp.Payload.Data), nil
}

func (p *gcpSecretManagerProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *gcpSecretManagerProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	secretPath := fmt.Sprintf("projects/%s/secrets/%s", p.project, key)
	if _, err := p.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: secretPath}); err != nil {
		if status.Code(err) != codes.NotFound {
			return "", fmt.Errorf("gcp-sm: %w", err)
		}
		_, err := p.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", p.project),
			SecretId: key,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		})
		if err != nil {
			return "", fmt.Errorf("gcp-sm: creating secret %q: %w", key, err)
		}
	}

	if _, err := p.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  secretPath,
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(plaintext)},
	}); err != nil {
		return "", fmt.Errorf("gcp-sm: %w", err)
	}
	return key, nil
}

func (p *gcpSecretManagerProvider) Test(ctx context.Context) error {
	it := p.client.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent:   fmt.Sprintf("projects/%s", p.project),
		PageSize: 1,
	})
	_, err := it.Next()
	if err != nil && err.Error() != "no more items in iterator" {
		return fmt.Errorf("gcp-sm: %w", err)
	}
	return nil
}

// gcpKMSProvider performs envelope encrypt/decrypt via GCP Cloud KMS,
// declared as `type = "gcp-kms"`. key_name is the full
// projects/P/locations/L/keyRings/R/cryptoKeys/K resource name.
type gcpKMSProvider struct {
	provider.Base
	client  *kms.KeyManagementClient
	keyName string
}

func newGCPKMSProvider(name string, attrs map[string]any) (provider.Provider, error) {
	ctx := context.Background()
	client, err := kms.NewKeyManagementClient(ctx, gcpClientOptions(attrs)...)
	if err != nil {
		return nil, fmt.Errorf("gcp-kms: creating client: %w", err)
	}
	return &gcpKMSProvider{
		Base:    provider.Base{ProviderName: name, ProviderType: "gcp-kms"},
		client:  client,
		keyName: attrString(attrs, "key_name"),
	}, nil
}

func (p *gcpKMSProvider) Validate() error {
	if p.keyName == "" {
		return fmt.Errorf("gcp-kms: missing required attribute %q", "key_name")
	}
	return nil
}

func (p *gcpKMSProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Decrypt: true, Encrypt: true, Test: true, MaxConcurrency: 10}
}

func (p *gcpKMSProvider) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("gcp-kms: ciphertext is not valid base64: %w", err)
	}
	resp, err := p.client.Decrypt(ctx, &kmspb.DecryptRequest{Name: p.keyName, Ciphertext: blob})
	if err != nil {
		return "", fmt.Errorf("gcp-kms: %w", err)
	}
	return string(resp.Plaintext), nil
}

func (p *gcpKMSProvider) Encrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := p.client.Encrypt(ctx, &kmspb.EncryptRequest{Name: p.keyName, Plaintext: []byte(plaintext)})
	if err != nil {
		return "", fmt.Errorf("gcp-kms: %w", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

func (p *gcpKMSProvider) Test(ctx context.Context) error {
	_, err := p.client.GetCryptoKey(ctx, &kmspb.GetCryptoKeyRequest{Name: p.keyName})
	if err != nil {
		return fmt.Errorf("gcp-kms: %w", err)
	}
	return nil
}
