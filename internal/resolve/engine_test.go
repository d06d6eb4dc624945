package resolve

import (
	"context"
	"testing"

	"go.dot.industries/vx/internal/config"
	"go.dot.industries/vx/internal/provider"
)

// fakeProvider is an in-memory Provider for exercising the resolution
// engine without any real backend.
type fakeProvider struct {
	provider.Base
	data map[string]string
	caps provider.Capabilities
}

func newFakeProvider(name string, data map[string]string, caps provider.Capabilities) *fakeProvider {
	return &fakeProvider{
		Base: provider.Base{ProviderName: name, ProviderType: "fake"},
		data: data,
		caps: caps,
	}
}

func (p *fakeProvider) Capabilities() provider.Capabilities { return p.caps }

func (p *fakeProvider) Read(ctx context.Context, key string) (string, error) {
	if v, ok := p.data[key]; ok {
		return v, nil
	}
	return "", provider.NotFoundf("fake: %q not found", key)
}

func (p *fakeProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, 4)
}

func (p *fakeProvider) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if v, ok := p.data[ciphertext]; ok {
		return v, nil
	}
	return "", provider.NotFoundf("fake: %q not found", ciphertext)
}

func newTestRegistry(providers ...*fakeProvider) *provider.Registry {
	reg := provider.NewRegistry()
	for _, p := range providers {
		p := p
		reg.Register(p.ProviderType+"-"+p.ProviderName, func(name string, attrs map[string]any) (provider.Provider, error) {
			return p, nil
		})
	}
	return reg
}

func TestResolveBindingReadsFromProvider(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{"ref": "hunter2"}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "ref"},
		},
		Providers: map[string]config.ProviderDecl{
			"main": {Type: "fake-main"},
		},
	}

	e := New(profile, reg, nil)
	rv, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if !rv.Present || rv.Value != "hunter2" {
		t.Fatalf("ResolveBinding() = %+v, want Present=true Value=hunter2", rv)
	}
}

func TestResolveBindingFallsBackToDefault(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "missing-ref", Default: "fallback-value"},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	e := New(profile, reg, nil)
	rv, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if !rv.Present || rv.Value != "fallback-value" {
		t.Fatalf("ResolveBinding() = %+v, want the default value", rv)
	}
}

func TestResolveBindingEnvTakesPriorityOverDefault(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "missing-ref", Default: "fallback-value"},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	env := map[string]string{"API_KEY": "from-env"}
	e := New(profile, reg, func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	rv, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if rv.Value != "from-env" {
		t.Fatalf("ResolveBinding() = %+v, want the env value to win over default", rv)
	}
}

func TestResolveBindingMissingWithErrorPolicyFails(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "missing-ref", IfMissing: config.IfMissingError},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	e := New(profile, reg, nil)
	_, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err == nil {
		t.Fatal("expected an error for a missing required secret")
	}
}

func TestResolveBindingMissingWithWarnPolicyIsPresentFalse(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "missing-ref", IfMissing: config.IfMissingWarn},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	e := New(profile, reg, nil)
	rv, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if rv.Present {
		t.Fatalf("ResolveBinding() = %+v, want Present=false", rv)
	}
}

func TestResolveBindingDecryptPath(t *testing.T) {
	fp := newFakeProvider("age1", map[string]string{"enc:xyz": "plaintext-value"}, provider.Capabilities{Decrypt: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"SECRET": {Provider: "age1", Value: "enc:xyz"},
		},
		Providers: map[string]config.ProviderDecl{"age1": {Type: "fake-age1"}},
	}

	e := New(profile, reg, nil)
	rv, err := e.ResolveBinding(context.Background(), "SECRET")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if rv.Value != "plaintext-value" {
		t.Fatalf("ResolveBinding() = %+v, want decrypted value", rv)
	}
}

func TestResolveBindingJSONPathExtraction(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{"ref": `{"nested": {"field": "deep-value"}}`}, provider.Capabilities{Read: true})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"API_KEY": {Provider: "main", Value: "ref", JSONPath: "nested.field"},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	e := New(profile, reg, nil)
	rv, err := e.ResolveBinding(context.Background(), "API_KEY")
	if err != nil {
		t.Fatalf("ResolveBinding() error: %v", err)
	}
	if rv.Value != "deep-value" {
		t.Fatalf("ResolveBinding() = %+v, want deep-value", rv)
	}
}

func TestResolveAllBatchesReadCapableProvider(t *testing.T) {
	fp := newFakeProvider("main", map[string]string{"a/ref": "va", "b/ref": "vb"}, provider.Capabilities{Read: true, MaxConcurrency: 4})
	reg := newTestRegistry(fp)

	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"A": {Provider: "main", Value: "a/ref"},
			"B": {Provider: "main", Value: "b/ref"},
		},
		Providers: map[string]config.ProviderDecl{"main": {Type: "fake-main"}},
	}

	e := New(profile, reg, nil)
	results, err := e.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error: %v", err)
	}
	if results["A"].Value != "va" || results["B"].Value != "vb" {
		t.Fatalf("ResolveAll() = %+v", results)
	}
}

func TestCheckProviderRefsDetectsCycle(t *testing.T) {
	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"S1": {Provider: "p2"},
		},
		Providers: map[string]config.ProviderDecl{
			"p1": {Attrs: map[string]config.Attr{
				"token": {Ref: &config.Ref{Secret: "S1"}},
			}},
			"p2": {Attrs: map[string]config.Attr{}},
		},
	}

	// Make p2 reference back to a secret bound to p1, forming a cycle.
	profile.Secrets["S1"] = config.Binding{Provider: "p2"}
	profile.Providers["p2"] = config.ProviderDecl{Attrs: map[string]config.Attr{
		"token": {Ref: &config.Ref{Secret: "S2"}},
	}}
	profile.Secrets["S2"] = config.Binding{Provider: "p1"}

	e := New(profile, provider.NewRegistry(), nil)
	err := e.CheckProviderRefs(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestCheckProviderRefsUnknownProvider(t *testing.T) {
	profile := &config.ResolvedProfile{
		Secrets:   map[string]config.Binding{},
		Providers: map[string]config.ProviderDecl{},
	}
	e := New(profile, provider.NewRegistry(), nil)
	if err := e.CheckProviderRefs(context.Background(), "nonexistent"); err == nil {
		t.Fatal("expected an unknown-provider error")
	}
}

func TestCheckProviderRefsNoIO(t *testing.T) {
	// A registry with no factories registered at all: if CheckProviderRefs
	// ever tried to construct a provider, this would fail loudly.
	profile := &config.ResolvedProfile{
		Secrets: map[string]config.Binding{
			"S1": {Provider: "p1", Value: "x"},
		},
		Providers: map[string]config.ProviderDecl{
			"p1": {Type: "unregistered-type", Attrs: map[string]config.Attr{}},
		},
	}

	e := New(profile, provider.NewRegistry(), nil)
	if err := e.CheckProviderRefs(context.Background(), "p1"); err != nil {
		t.Fatalf("CheckProviderRefs() should not require provider construction: %v", err)
	}
}
