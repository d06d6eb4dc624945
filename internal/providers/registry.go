package providers

import "go.dot.industries/vx/internal/provider"

// NewRegistry builds a provider.Registry with every backend type the spec
// names wired to its factory. Callers construct one registry per process
// and hand it to the resolve engine.
func NewRegistry() *provider.Registry {
	r := provider.NewRegistry()

	r.Register("plain", newPlainProvider)
	r.Register("age", newAgeProvider)
	r.Register("vault", newVaultProvider)
	r.Register("keychain", newKeychainProvider)
	r.Register("password-store", newPasswordStoreProvider)
	r.Register("1password", newOnePasswordProvider)
	r.Register("bitwarden", newBitwardenProvider)
	r.Register("bitwarden-sm", newBitwardenSecretsManagerProvider)
	r.Register("infisical", newInfisicalProvider)
	r.Register("keepass", newKeepassProvider)
	r.Register("aws-sm", newAWSSecretsManagerProvider)
	r.Register("aws-ps", newAWSParameterStoreProvider)
	r.Register("aws-kms", newAWSKMSProvider)
	r.Register("gcp-sm", newGCPSecretManagerProvider)
	r.Register("gcp-kms", newGCPKMSProvider)
	r.Register("azure-sm", newAzureSecretManagerProvider)
	r.Register("azure-kms", newAzureKMSProvider)

	return r
}
