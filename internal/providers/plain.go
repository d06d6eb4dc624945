// Package providers wires every provider type named in the spec's
// discriminated ProviderDecl union to a concrete, SDK-backed implementation
// and registers them into a provider.Registry.
package providers

import (
	"context"
	"fmt"

	"go.dot.industries/vx/internal/provider"
)

// plainProvider is the trivial passthrough: its `value`/`default` is the
// plaintext itself, stored verbatim in the config. No library applies here
// — there is nothing to wire.
type plainProvider struct {
	provider.Base
}

func newPlainProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &plainProvider{Base: provider.Base{ProviderName: name, ProviderType: "plain"}}, nil
}

func (p *plainProvider) Validate() error { return nil }

func (p *plainProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, MaxConcurrency: 16}
}

func (p *plainProvider) Read(ctx context.Context, key string) (string, error) {
	return key, nil
}

func (p *plainProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	out := make(map[string]provider.Result, len(keys))
	for _, k := range keys {
		out[k] = provider.Result{Value: k}
	}
	return out, nil
}

func (p *plainProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	return plaintext, nil
}

func attrString(attrs map[string]any, key string) string {
	v, ok := attrs[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func requireAttrString(attrs map[string]any, key string) (string, error) {
	s := attrString(attrs, key)
	if s == "" {
		return "", fmt.Errorf("missing required attribute %q", key)
	}
	return s, nil
}
