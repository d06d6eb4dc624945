package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.dot.industries/vx/internal/provider"
)

// onePasswordProvider shells out to the `op` CLI, declared as
// `type = "1password"`. Reference is "vault/item/field"; reads go through
// `op read op://vault/item/field`, matching the `op` CLI's own secret
// reference syntax. Grounded on systmms-dsops/internal/providers/pass.go's
// subprocess pattern; Write runs `op item edit`, and Test parses op's
// structured `--format=json` account output.
type onePasswordProvider struct {
	provider.Base
	account string
}

func newOnePasswordProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &onePasswordProvider{
		Base:    provider.Base{ProviderName: name, ProviderType: "1password"},
		account: attrString(attrs, "account"),
	}, nil
}

func (p *onePasswordProvider) Validate() error {
	return checkAvailable("op")
}

func (p *onePasswordProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Write: true, Test: true, MaxConcurrency: 4, Reauthenticate: true}
}

func (p *onePasswordProvider) env() []string {
	env := os.Environ()
	if p.account != "" {
		env = append(env, "OP_ACCOUNT="+p.account)
	}
	return env
}

func (p *onePasswordProvider) Read(ctx context.Context, key string) (string, error) {
	ref := key
	if !strings.HasPrefix(ref, "op://") {
		ref = "op://" + ref
	}

	out, err := runSubprocess(ctx, 0, "op", p.env(), "read", ref)
	if err != nil {
		if strings.Contains(err.Error(), "isn't an item") || strings.Contains(err.Error(), "not found") {
			return "", provider.NotFoundf("1password: %q not found", key)
		}
		if strings.Contains(err.Error(), "not currently signed in") {
			return "", provider.AuthExpiredf("1password: not signed in")
		}
		return "", fmt.Errorf("1password: %w", err)
	}
	return out, nil
}

func (p *onePasswordProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *onePasswordProvider) Write(ctx context.Context, key string, plaintext string) (string, error) {
	vault, item, field, err := splitOnePasswordRef(key)
	if err != nil {
		return "", err
	}

	if _, err := runSubprocess(ctx, 0, "op", p.env(), "item", "edit", item,
		fmt.Sprintf("%s=%s", field, plaintext), "--vault", vault); err != nil {
		return "", fmt.Errorf("1password: %w", err)
	}
	return "op://" + key, nil
}

func (p *onePasswordProvider) Test(ctx context.Context) error {
	out, err := runSubprocess(ctx, 0, "op", p.env(), "account", "get", "--format=json")
	if err != nil {
		return fmt.Errorf("1password: %w", err)
	}
	var account map[string]any
	if err := json.Unmarshal([]byte(out), &account); err != nil {
		return fmt.Errorf("1password: unexpected account response: %w", err)
	}
	return nil
}

func splitOnePasswordRef(ref string) (vault, item, field string, err error) {
	parts := strings.Split(strings.TrimPrefix(ref, "op://"), "/")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("1password: reference %q must be of the form vault/item/field", ref)
	}
	return parts[0], parts[1], parts[2], nil
}
