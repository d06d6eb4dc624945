// Package resolve implements the resolution engine: the per-binding
// fallback chain (spec I4/§4.4), provider-grouped batching, the
// provider-config reference resolver with cycle detection (spec §4.3), and
// the if_missing policy (spec I3).
package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.dot.industries/vx/internal/config"
	"go.dot.industries/vx/internal/ferr"
	"go.dot.industries/vx/internal/provider"
)

// EnvLookup abstracts process-environment reads so tests can substitute a
// fixed map instead of the real os.Environ.
type EnvLookup func(key string) (string, bool)

// ResolvedValue is the outcome of resolving one binding: either a present
// value (to be injected verbatim, including embedded newlines) or a
// structured absence reason for diagnostics.
type ResolvedValue struct {
	Value   string
	Present bool
	Missing *MissingInfo
}

// MissingInfo describes why a binding produced no value.
type MissingInfo struct {
	Policy config.IfMissing
	Reason string
}

// Engine resolves bindings for one ResolvedProfile, constructing providers
// lazily and caching them for the lifetime of a single command invocation
// (never across invocations — spec Non-goals).
type Engine struct {
	Profile  *config.ResolvedProfile
	Registry *provider.Registry
	Env      EnvLookup

	// CLIFlag/EnvOverride/EnvDefault are the three layers of the I3
	// if_missing resolution order that come from the command line and
	// environment rather than from config.
	CLIFlag    config.IfMissing
	EnvOverride config.IfMissing
	EnvDefault  config.IfMissing

	mu        sync.Mutex
	providers map[string]provider.Provider
	stack     []string
}

// New constructs an Engine. env defaults to a no-op lookup if nil.
func New(profile *config.ResolvedProfile, registry *provider.Registry, env EnvLookup) *Engine {
	if env == nil {
		env = func(string) (string, bool) { return "", false }
	}
	return &Engine{
		Profile:   profile,
		Registry:  registry,
		Env:       env,
		providers: make(map[string]provider.Provider),
	}
}

// GetProvider constructs (or returns the cached instance of) the named
// provider, finalizing its attribute map via the provider-config reference
// resolver. Cycles in the reference graph are detected via an explicit
// in-flight construction stack (spec §4.3/§9) and reported as ConfigCycle.
func (e *Engine) GetProvider(ctx context.Context, name string) (provider.Provider, error) {
	e.mu.Lock()
	if p, ok := e.providers[name]; ok {
		e.mu.Unlock()
		return p, nil
	}
	for _, s := range e.stack {
		if s == name {
			chain := append(append([]string{}, e.stack...), name)
			e.mu.Unlock()
			return nil, ferr.New(ferr.ConfigCycle, "provider config cycle: %s", strings.Join(chain, " -> "))
		}
	}
	e.stack = append(e.stack, name)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.stack = e.stack[:len(e.stack)-1]
		e.mu.Unlock()
	}()

	decl, ok := e.Profile.Providers[name]
	if !ok {
		return nil, ferr.New(ferr.UnknownProvider, "unknown provider %q", name)
	}

	attrs, err := e.finalizeAttrs(ctx, name, decl)
	if err != nil {
		return nil, err
	}

	p, err := e.Registry.Create(decl.Type, name, attrs)
	if err != nil {
		return nil, ferr.Wrap(ferr.ProviderValidation, err, "constructing provider %q", name)
	}

	e.mu.Lock()
	e.providers[name] = p
	e.mu.Unlock()

	return p, nil
}

// finalizeAttrs replaces every `{secret=NAME}` sentinel in decl's attribute
// map with the resolved value of binding NAME, recursing into the engine
// for bindings whose own provider has not yet been constructed.
func (e *Engine) finalizeAttrs(ctx context.Context, providerName string, decl config.ProviderDecl) (map[string]any, error) {
	out := make(map[string]any, len(decl.Attrs))

	for attrName, attr := range decl.Attrs {
		if !attr.IsRef() {
			out[attrName] = attr.Literal
			continue
		}

		target := attr.Ref.Secret
		val, found, err := e.resolveRefTarget(ctx, target)
		if err != nil {
			return nil, err
		}
		if !found {
			if e.ifMissingFor(target) == config.IfMissingError {
				return nil, ferr.New(ferr.MissingSecret,
					"provider %q attribute %q references missing secret %q", providerName, attrName, target)
			}
			val = ""
		}
		out[attrName] = val
	}

	return out, nil
}

// resolveRefTarget resolves the value behind a `{secret=NAME}` sentinel:
// first the ResolvedProfile's bindings, then the process environment
// (spec §4.3 "Resolution order inside a reference").
func (e *Engine) resolveRefTarget(ctx context.Context, key string) (string, bool, error) {
	if b, ok := e.Profile.Secrets[key]; ok {
		rv, err := e.resolveBindingPipeline(ctx, key, b)
		if err != nil {
			return "", false, err
		}
		return rv.Value, rv.Present, nil
	}
	if v, ok := e.Env(key); ok {
		return v, true, nil
	}
	return "", false, nil
}

func (e *Engine) ifMissingFor(key string) config.IfMissing {
	bindingField := config.IfMissing("")
	if b, ok := e.Profile.Secrets[key]; ok {
		bindingField = b.IfMissing
	}
	return IfMissingInputs{
		CLIFlag:       e.CLIFlag,
		EnvOverride:   e.EnvOverride,
		BindingField:  bindingField,
		TopLevelField: e.Profile.IfMissing,
		EnvDefault:    e.EnvDefault,
	}.Resolve()
}

// ResolveBinding runs the full per-binding pipeline for a single key (used
// by `get` and by reference resolution). get and exec must agree on a
// binding's resolved value — both funnel through this method.
func (e *Engine) ResolveBinding(ctx context.Context, key string) (ResolvedValue, error) {
	b, ok := e.Profile.Secrets[key]
	if !ok {
		return ResolvedValue{}, ferr.New(ferr.UnknownSecret, "unknown secret %q", key)
	}
	return e.resolveBindingPipeline(ctx, key, b)
}

// resolveBindingPipeline implements spec §4.4 steps 1-5.
func (e *Engine) resolveBindingPipeline(ctx context.Context, key string, b config.Binding) (ResolvedValue, error) {
	im := e.ifMissingFor(key)

	if b.Provider != "" && b.Value != "" {
		p, err := e.GetProvider(ctx, b.Provider)
		if err != nil {
			return ResolvedValue{}, err
		}
		caps := p.Capabilities()

		switch {
		case caps.Decrypt:
			pt, err := p.Decrypt(ctx, b.Value)
			if err != nil {
				return ResolvedValue{}, ferr.Wrap(ferr.CryptoError, err, "decrypting %q", key)
			}
			return e.applyJSONPath(key, pt, b, im)

		case caps.Read:
			val, err := p.Read(ctx, b.Value)
			switch {
			case err == nil:
				return e.applyJSONPath(key, val, b, im)
			case provider.IsNotFound(err):
				return e.fallbackAfterMiss(key, b, im)
			case provider.IsAuthExpired(err):
				return ResolvedValue{}, ferr.Wrap(ferr.AuthMissing, err, "reading %q", key)
			default:
				return ResolvedValue{}, ferr.Wrap(ferr.ProviderUnavailable, err, "reading %q", key)
			}
		}
	}

	return e.fallbackAfterMiss(key, b, im)
}

// applyJSONPath performs step 2's JSON-path extraction. A payload that does
// not start with `{`, or whose path does not match, is a Miss — the pipeline
// continues to process env / default / if_missing. A payload that starts
// with `{` but is not valid JSON, or a malformed path, is a ConfigParse error.
func (e *Engine) applyJSONPath(key string, raw string, b config.Binding, im config.IfMissing) (ResolvedValue, error) {
	if b.JSONPath == "" {
		return ResolvedValue{Value: raw, Present: true}, nil
	}
	if !LooksLikeJSON(raw) {
		return e.fallbackAfterMiss(key, b, im)
	}

	v, found, err := ExtractJSONPath(raw, b.JSONPath)
	if err != nil {
		return ResolvedValue{}, ferr.Wrap(ferr.ConfigParse, err, "json_path for %q", key)
	}
	if !found {
		return e.fallbackAfterMiss(key, b, im)
	}
	return ResolvedValue{Value: v, Present: true}, nil
}

// fallbackAfterMiss implements steps 3-5: process-environment inheritance,
// literal default, then if_missing.
func (e *Engine) fallbackAfterMiss(key string, b config.Binding, im config.IfMissing) (ResolvedValue, error) {
	if v, ok := e.Env(key); ok {
		return ResolvedValue{Value: v, Present: true}, nil
	}
	if b.Default != "" {
		return ResolvedValue{Value: b.Default, Present: true}, nil
	}

	switch im {
	case config.IfMissingError:
		return ResolvedValue{}, ferr.New(ferr.MissingSecret, "required secret %q has no value", key)
	default: // warn, ignore: both omit the binding; warn additionally logs (caller's job)
		return ResolvedValue{Present: false, Missing: &MissingInfo{Policy: im, Reason: "no source of value"}}, nil
	}
}

// ResolveAll resolves every binding in the active profile, grouping
// remote-fetch bindings by provider and dispatching one BatchRead per
// provider so N remote secrets cost one round trip where the backend
// supports it (spec §4.4). Decrypt-path and env/default-only bindings are
// resolved individually. Providers are dispatched concurrently; a single
// lock guards the shared result map, acquired only on insert (spec §5).
func (e *Engine) ResolveAll(ctx context.Context) (map[string]ResolvedValue, error) {
	results := make(map[string]ResolvedValue, len(e.Profile.Secrets))
	var mu sync.Mutex

	type batchGroup struct {
		providerName string
		refToBinding map[string][]string // provider ref key -> owning binding keys
	}
	groups := make(map[string]*batchGroup)

	var individual []string

	for key, b := range e.Profile.Secrets {
		if b.Provider != "" && b.Value != "" {
			decl, ok := e.Profile.Providers[b.Provider]
			if ok {
				// The dispatch shape depends on the provider's capabilities,
				// so the provider is constructed here (construction may
				// itself resolve other bindings; the instance is cached for
				// later calls).
				p, err := e.GetProvider(ctx, b.Provider)
				if err != nil {
					return nil, err
				}
				_ = decl
				caps := p.Capabilities()
				if caps.Read && !caps.Decrypt {
					g, ok := groups[b.Provider]
					if !ok {
						g = &batchGroup{providerName: b.Provider, refToBinding: make(map[string][]string)}
						groups[b.Provider] = g
					}
					g.refToBinding[b.Value] = append(g.refToBinding[b.Value], key)
					continue
				}
			}
		}
		individual = append(individual, key)
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			p, err := e.GetProvider(gctx, grp.providerName)
			if err != nil {
				return err
			}

			refKeys := make([]string, 0, len(grp.refToBinding))
			for ref := range grp.refToBinding {
				refKeys = append(refKeys, ref)
			}

			batch, err := p.BatchRead(gctx, refKeys)
			if err != nil {
				return err
			}

			for ref, bindingKeys := range grp.refToBinding {
				r, ok := batch[ref]
				for _, bindingKey := range bindingKeys {
					b := e.Profile.Secrets[bindingKey]
					im := e.ifMissingFor(bindingKey)

					var rv ResolvedValue
					var rerr error
					switch {
					case !ok || r.Err != nil:
						rerr = ferr.Wrap(ferr.ProviderUnavailable, errOrMissing(ok, r), "reading %q", bindingKey)
					case r.Miss:
						rv, rerr = e.fallbackAfterMiss(bindingKey, b, im)
					default:
						rv, rerr = e.applyJSONPath(bindingKey, r.Value, b, im)
					}

					if rerr != nil {
						return rerr
					}

					mu.Lock()
					results[bindingKey] = rv
					mu.Unlock()
				}
			}
			return nil
		})
	}

	for _, key := range individual {
		key := key
		g.Go(func() error {
			rv, err := e.ResolveBinding(gctx, key)
			if err != nil {
				return err
			}
			mu.Lock()
			results[key] = rv
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func errOrMissing(ok bool, r provider.Result) error {
	if !ok {
		return fmt.Errorf("no result returned for key")
	}
	return r.Err
}

// CheckProviderRefs walks the provider-config reference graph reachable
// from providerName without constructing any provider or performing any
// provider I/O (spec §4.3 structural check, used by the `check` command).
// It reports unknown provider references and reference cycles; a reference
// to a name that is not a binding is taken as an environment lookup and is
// not reported.
func (e *Engine) CheckProviderRefs(ctx context.Context, providerName string) error {
	return e.checkProviderRefs(providerName, nil)
}

func (e *Engine) checkProviderRefs(providerName string, stack []string) error {
	for _, s := range stack {
		if s == providerName {
			chain := append(append([]string{}, stack...), providerName)
			return ferr.New(ferr.ConfigCycle, "provider config cycle: %s", strings.Join(chain, " -> "))
		}
	}

	decl, ok := e.Profile.Providers[providerName]
	if !ok {
		return ferr.New(ferr.UnknownProvider, "unknown provider %q", providerName)
	}

	stack = append(stack, providerName)

	for attrName, attr := range decl.Attrs {
		if !attr.IsRef() {
			continue
		}
		target := attr.Ref.Secret

		b, ok := e.Profile.Secrets[target]
		if !ok {
			// Not a known binding: treated as a pure environment lookup at
			// resolution time, nothing further to check statically.
			continue
		}
		if b.Provider != "" {
			if err := e.checkProviderRefs(b.Provider, stack); err != nil {
				return fmt.Errorf("provider %q attribute %q: %w", providerName, attrName, err)
			}
		}
	}

	return nil
}
