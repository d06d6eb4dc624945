package providers

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"go.dot.industries/vx/internal/provider"
)

func loadAWSConfig(ctx context.Context, attrs map[string]any) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region := attrString(attrs, "region"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile := attrString(attrs, "profile"); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// awsSecretsManagerProvider reads/writes AWS Secrets Manager secrets,
// declared as `type = "aws-sm"`. Grounded on systmms-dsops's heavy use of
// aws-sdk-go-v2 across its provider set.
type awsSecretsManagerProvider struct {
	provider.Base
	client *secretsmanager.Client
}

func newAWSSecretsManagerProvider(name string, attrs map[string]any) (provider.Provider, error) {
	cfg, err := loadAWSConfig(context.Background(), attrs)
	if err != nil {
		return nil, fmt.Errorf("aws-sm: loading AWS config: %w", err)
	}
	return &awsSecretsManagerProvider{
		Base:   provider.Base{ProviderName: name, ProviderType: "aws-sm"},
		client: secretsmanager.NewFromConfig(cfg),
	}, nil
}

func (p *awsSecretsManagerProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 10}
}

func (p *awsSecretsManagerProvider) Read(ctx context.Context, key string) (string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(key)})
	if err != nil {
		var nf *smtypes.ResourceNotFoundException
		if isAWSErr(err, &nf) {
			return "", provider.NotFoundf("aws-sm: %q not found", key)
		}
		return "", fmt.Errorf("aws-sm: %w", err)
	}
	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	return base64.StdEncoding.EncodeToString(out.SecretBinary), nil
}

func (p *awsSecretsManagerProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *awsSecretsManagerProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	_, err := p.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(key),
		SecretString: aws.String(plaintext),
	})
	if err != nil {
		var nf *smtypes.ResourceNotFoundException
		if isAWSErr(err, &nf) {
			_, err = p.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
				Name:         aws.String(key),
				SecretString: aws.String(plaintext),
			})
		}
		if err != nil {
			return "", fmt.Errorf("aws-sm: %w", err)
		}
	}
	return key, nil
}

func (p *awsSecretsManagerProvider) Test(ctx context.Context) error {
	_, err := p.client.ListSecrets(ctx, &secretsmanager.ListSecretsInput{MaxResults: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("aws-sm: %w", err)
	}
	return nil
}

// awsParameterStoreProvider reads/writes AWS SSM Parameter Store values,
// declared as `type = "aws-ps"`.
type awsParameterStoreProvider struct {
	provider.Base
	client    *ssm.Client
	decrypt   bool
}

func newAWSParameterStoreProvider(name string, attrs map[string]any) (provider.Provider, error) {
	cfg, err := loadAWSConfig(context.Background(), attrs)
	if err != nil {
		return nil, fmt.Errorf("aws-ps: loading AWS config: %w", err)
	}
	return &awsParameterStoreProvider{
		Base:    provider.Base{ProviderName: name, ProviderType: "aws-ps"},
		client:  ssm.NewFromConfig(cfg),
		decrypt: true,
	}, nil
}

func (p *awsParameterStoreProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 10}
}

func (p *awsParameterStoreProvider) Read(ctx context.Context, key string) (string, error) {
	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(p.decrypt),
	})
	if err != nil {
		var nf *ssmtypes.ParameterNotFound
		if isAWSErr(err, &nf) {
			return "", provider.NotFoundf("aws-ps: %q not found", key)
		}
		return "", fmt.Errorf("aws-ps: %w", err)
	}
	return aws.ToString(out.Parameter.Value), nil
}

func (p *awsParameterStoreProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *awsParameterStoreProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	_, err := p.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(key),
		Value:     aws.String(plaintext),
		Type:      ssmtypes.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("aws-ps: %w", err)
	}
	return key, nil
}

func (p *awsParameterStoreProvider) Test(ctx context.Context) error {
	_, err := p.client.DescribeParameters(ctx, &ssm.DescribeParametersInput{MaxResults: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("aws-ps: %w", err)
	}
	return nil
}

// awsKMSProvider performs envelope encrypt/decrypt via AWS KMS, declared
// as `type = "aws-kms"`. Ciphertext stored in configs is base64 of the raw
// KMS CiphertextBlob; ref is the key id/ARN used to encrypt.
type awsKMSProvider struct {
	provider.Base
	client *kms.Client
	keyID  string
}

func newAWSKMSProvider(name string, attrs map[string]any) (provider.Provider, error) {
	cfg, err := loadAWSConfig(context.Background(), attrs)
	if err != nil {
		return nil, fmt.Errorf("aws-kms: loading AWS config: %w", err)
	}
	return &awsKMSProvider{
		Base:   provider.Base{ProviderName: name, ProviderType: "aws-kms"},
		client: kms.NewFromConfig(cfg),
		keyID:  attrString(attrs, "key_id"),
	}, nil
}

func (p *awsKMSProvider) Validate() error {
	if p.keyID == "" {
		return fmt.Errorf("aws-kms: missing required attribute %q", "key_id")
	}
	return nil
}

func (p *awsKMSProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Decrypt: true, Encrypt: true, Test: true, MaxConcurrency: 10}
}

func (p *awsKMSProvider) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("aws-kms: ciphertext is not valid base64: %w", err)
	}
	out, err := p.client.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob, KeyId: aws.String(p.keyID)})
	if err != nil {
		return "", fmt.Errorf("aws-kms: %w", err)
	}
	return string(out.Plaintext), nil
}

func (p *awsKMSProvider) Encrypt(ctx context.Context, plaintext string) (string, error) {
	out, err := p.client.Encrypt(ctx, &kms.EncryptInput{KeyId: aws.String(p.keyID), Plaintext: []byte(plaintext)})
	if err != nil {
		return "", fmt.Errorf("aws-kms: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (p *awsKMSProvider) Test(ctx context.Context) error {
	_, err := p.client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(p.keyID)})
	if err != nil {
		return fmt.Errorf("aws-kms: %w", err)
	}
	return nil
}

func isAWSErr[T error](err error, target *T) bool {
	for e := err; e != nil; e = unwrapOnce(e) {
		if t, ok := e.(T); ok {
			*target = t
			return true
		}
	}
	return false
}

func unwrapOnce(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return nil
}
