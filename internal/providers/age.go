package providers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"go.dot.industries/vx/internal/provider"
)

// ageCiphertextPrefix tags our envelope so Decrypt can reject unrelated
// strings instead of silently misinterpreting them.
const ageCiphertextPrefix = "fnoxage1:"

// ageProvider is the inline-ciphertext encryption provider declared as
// `type = "age"`. No real `age` library exists anywhere in the retrieval
// pack (confirmed by a corpus-wide grep for filippo.io/age and equivalents);
// golang.org/x/crypto — already an indirect dependency of the teacher via
// the Vault/AWS/Azure SDK dependency trees — supplies the real AEAD
// primitives (ChaCha20-Poly1305, HKDF) this provider builds its envelope
// from. See DESIGN.md for the substitution rationale.
type ageProvider struct {
	provider.Base
	key [32]byte
}

func newAgeProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &ageProvider{Base: provider.Base{ProviderName: name, ProviderType: "age"}}, nil
}

func (p *ageProvider) Validate() error {
	key, err := loadAgeKey()
	if err != nil {
		return err
	}
	p.key = key
	return nil
}

func (p *ageProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Decrypt: true, Encrypt: true, MaxConcurrency: 16}
}

func (p *ageProvider) Encrypt(ctx context.Context, plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(p.key[:])
	if err != nil {
		return "", fmt.Errorf("age: initializing cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("age: generating nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ageCiphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (p *ageProvider) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if len(ciphertext) < len(ageCiphertextPrefix) || ciphertext[:len(ageCiphertextPrefix)] != ageCiphertextPrefix {
		return "", fmt.Errorf("age: value does not look like age ciphertext")
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext[len(ageCiphertextPrefix):])
	if err != nil {
		return "", fmt.Errorf("age: decoding ciphertext: %w", err)
	}

	aead, err := chacha20poly1305.New(p.key[:])
	if err != nil {
		return "", fmt.Errorf("age: initializing cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("age: ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("age: decryption failed: %w", err)
	}
	return string(plain), nil
}

// looksLikeAgeCiphertext reports whether value is plausibly age ciphertext.
// Nothing calls it: the engine chooses between DECRYPT and READ from the
// provider's Capabilities alone.
func looksLikeAgeCiphertext(value string) bool {
	return len(value) > len(ageCiphertextPrefix) && value[:len(ageCiphertextPrefix)] == ageCiphertextPrefix
}

// loadAgeKey derives the 32-byte symmetric key via HKDF (deriveAgeKey) from
// the contents of FNOX_AGE_KEY, or else of the file named by
// FNOX_AGE_KEY_FILE; the material is never decoded as raw or base64 key bytes.
func loadAgeKey() ([32]byte, error) {
	var key [32]byte

	if raw := os.Getenv("FNOX_AGE_KEY"); raw != "" {
		return deriveAgeKey(raw)
	}
	if path := os.Getenv("FNOX_AGE_KEY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return key, fmt.Errorf("age: reading FNOX_AGE_KEY_FILE: %w", err)
		}
		return deriveAgeKey(string(data))
	}

	return key, fmt.Errorf("age: neither FNOX_AGE_KEY nor FNOX_AGE_KEY_FILE is set")
}

// deriveAgeKey stretches arbitrary key material into a 32-byte ChaCha20 key
// via HKDF-SHA256, so a human-chosen passphrase or a raw key file both work.
func deriveAgeKey(material string) ([32]byte, error) {
	var key [32]byte
	hk := hkdf.New(sha256.New, []byte(material), nil, []byte("fnox-age-v1"))
	if _, err := io.ReadFull(hk, key[:]); err != nil {
		return key, fmt.Errorf("age: deriving key: %w", err)
	}
	return key, nil
}
