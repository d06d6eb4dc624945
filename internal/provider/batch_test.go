package provider

import (
	"context"
	"testing"
)

type staticProvider struct {
	Base
	data map[string]string
}

func (p *staticProvider) Capabilities() Capabilities { return Capabilities{Read: true} }

func (p *staticProvider) Read(ctx context.Context, key string) (string, error) {
	if v, ok := p.data[key]; ok {
		return v, nil
	}
	return "", NotFoundf("no value for %q", key)
}

func (p *staticProvider) BatchRead(ctx context.Context, keys []string) (map[string]Result, error) {
	return BatchRead(ctx, p, keys, 2)
}

func TestBatchReadResolvesEveryKey(t *testing.T) {
	p := &staticProvider{Base: Base{ProviderName: "s"}, data: map[string]string{
		"a": "1", "b": "2", "c": "3",
	}}

	results, err := p.BatchRead(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchRead() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("BatchRead() returned %d results, want 3", len(results))
	}
	for k, want := range p.data {
		if results[k].Value != want {
			t.Errorf("results[%q] = %q, want %q", k, results[k].Value, want)
		}
	}
}

func TestBatchReadMarksMissAsNotFound(t *testing.T) {
	p := &staticProvider{Base: Base{ProviderName: "s"}, data: map[string]string{"present": "v"}}

	results, err := p.BatchRead(context.Background(), []string{"present", "absent"})
	if err != nil {
		t.Fatalf("BatchRead() error: %v", err)
	}
	if !results["absent"].Miss {
		t.Fatalf("results[absent] = %+v, want Miss=true", results["absent"])
	}
	if results["present"].Miss {
		t.Fatalf("results[present] = %+v, want Miss=false", results["present"])
	}
}

func TestBaseDefaultsReportUnsupported(t *testing.T) {
	b := Base{ProviderName: "p"}

	if _, err := b.Read(context.Background(), "k"); err == nil {
		t.Error("Base.Read should return an error by default")
	}
	if err := b.Test(context.Background()); err != nil {
		t.Errorf("Base.Test default should be a no-op, got %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("Base.Validate default should be a no-op, got %v", err)
	}
}
