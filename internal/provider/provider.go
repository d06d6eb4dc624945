// Package provider defines the contract every secret backend implements:
// a fixed capability set (READ, BATCH_READ, DECRYPT, ENCRYPT, WRITE, TEST),
// capability negotiation, and the distinguished errors the resolution
// engine reacts to (AuthExpired, NotFound).
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Capabilities declares which operations a provider supports and its
// preferred batch concurrency. A provider not supporting an operation must
// have the engine route around it per the fallback chain (spec I4).
type Capabilities struct {
	Read     bool
	Decrypt  bool
	Encrypt  bool
	Write    bool
	Test     bool
	// NativeBatch marks a provider whose BatchRead uses a server-side batch
	// API. No provider in this tree sets it, and the engine does not read
	// it: every provider's BatchRead loops over Read via BatchRead below.
	NativeBatch bool
	// MaxConcurrency is the concurrency bound a provider passes to
	// BatchRead below (e.g. subprocess providers use 4).
	MaxConcurrency int
	// Reauthenticate is true for providers that can plausibly hit an
	// AuthExpired condition. The engine does not read it and does not
	// retry after AuthExpired.
	Reauthenticate bool
}

// Provider is a named backend that produces or stores secret values.
type Provider interface {
	// Name is the provider's declared name (the key under [providers]).
	Name() string

	// Type is the discriminated type tag (e.g. "vault", "age", "plain").
	Type() string

	// Capabilities reports which operations this instance supports.
	Capabilities() Capabilities

	// Read fetches a single value by provider-specific reference.
	Read(ctx context.Context, key string) (string, error)

	// BatchRead fetches multiple values. The default implementation used by
	// providers without a native batch API loops over Read with bounded
	// concurrency; see the BatchRead function below.
	BatchRead(ctx context.Context, keys []string) (map[string]Result, error)

	// Decrypt turns inline ciphertext (stored in a binding's `value`) into
	// plaintext. Only meaningful when Capabilities().Decrypt is true.
	Decrypt(ctx context.Context, ciphertext string) (string, error)

	// Encrypt is the inverse of Decrypt, used by `set` for inline-ciphertext
	// providers.
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Write stores a value remotely and returns the canonical reference to
	// place in the binding's `value`.
	Write(ctx context.Context, key string, plaintext string) (ref string, err error)

	// Test performs a connection/credentials smoke check.
	Test(ctx context.Context) error

	// Validate checks the provider's finalized attribute map and returns a
	// descriptive error naming missing or malformed required attributes.
	Validate() error
}

// Result is one entry of a BatchRead response: either a resolved value or a
// structured miss.
type Result struct {
	Value string
	Miss  bool
	Err   error
}

// Sentinel error kinds the resolution engine distinguishes.
var (
	// ErrAuthExpired is returned by Read/Decrypt when credentials have
	// expired mid-session. The engine reports it as an AuthMissing error;
	// it does not prompt for re-authentication and does not retry.
	ErrAuthExpired = errors.New("provider: authentication expired")

	// ErrNotFound is returned when a key has no value at the backend. It is
	// distinct from a connection or auth failure so if_missing can apply.
	ErrNotFound = errors.New("provider: key not found")

	// ErrUnsupported is returned by an operation a provider's capability
	// set does not support. Callers should check Capabilities() first;
	// this is a defensive backstop.
	ErrUnsupported = errors.New("provider: operation not supported")
)

// IsAuthExpired reports whether err is (or wraps) ErrAuthExpired.
func IsAuthExpired(err error) bool { return errors.Is(err, ErrAuthExpired) }

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// NotFoundf builds a wrapped ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// AuthExpiredf builds a wrapped ErrAuthExpired with a formatted message.
func AuthExpiredf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrAuthExpired)
}

// Base provides default Capabilities-gated method bodies so concrete
// providers only need to implement what they declare support for. Embed it
// and override the methods the provider actually supports.
type Base struct {
	ProviderName string
	ProviderType string
}

func (b Base) Name() string { return b.ProviderName }
func (b Base) Type() string { return b.ProviderType }

func (b Base) Read(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("provider %q: %w", b.ProviderName, ErrUnsupported)
}

func (b Base) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	return "", fmt.Errorf("provider %q: %w", b.ProviderName, ErrUnsupported)
}

func (b Base) Encrypt(ctx context.Context, plaintext string) (string, error) {
	return "", fmt.Errorf("provider %q: %w", b.ProviderName, ErrUnsupported)
}

func (b Base) Write(ctx context.Context, key string, plaintext string) (string, error) {
	return "", fmt.Errorf("provider %q: %w", b.ProviderName, ErrUnsupported)
}

func (b Base) Test(ctx context.Context) error {
	return nil
}

// Validate is the default no-op: providers with required attributes
// override it to report missing/malformed ones.
func (b Base) Validate() error {
	return nil
}

// BatchRead is the default BATCH_READ implementation: it reads each key
// individually with bounded concurrency. Providers with a native batch API
// (NativeBatch capability) override this.
func BatchRead(ctx context.Context, p Provider, keys []string, maxConcurrency int) (map[string]Result, error) {
	return batchReadPool(ctx, keys, maxConcurrency, func(ctx context.Context, key string) Result {
		val, err := p.Read(ctx, key)
		if err != nil {
			if IsNotFound(err) {
				return Result{Miss: true}
			}
			return Result{Err: err}
		}
		return Result{Value: val}
	})
}
