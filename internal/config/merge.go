package config

// Merge folds a LayeredConfig's layers, lowest priority first, into a single
// ResolvedProfile for the named profile. Merging is a deep key-wise
// override: a later (higher-priority) layer replaces matching binding keys
// and provider names from earlier layers as whole records — there is no
// field-level union within a binding. Profile sections merge independently
// from top-level sections, then the profile overlay is applied on top.
// Neither the LayeredConfig nor any of its layers is mutated.
func Merge(layered *LayeredConfig, profile string) (*ResolvedProfile, error) {
	if profile == "" {
		profile = "default"
	}

	topSecrets := make(map[string]Binding)
	topProviders := make(map[string]ProviderDecl)
	profSecrets := make(map[string]Binding)
	profProviders := make(map[string]ProviderDecl)
	var ifMissing IfMissing

	for _, layer := range layered.Layers {
		for k, v := range layer.Secrets {
			topSecrets[k] = v
		}
		for k, v := range layer.Providers {
			topProviders[k] = v
		}
		if layer.IfMissing != "" {
			ifMissing = layer.IfMissing
		}

		if pc, ok := layer.Profiles[profile]; ok {
			for k, v := range pc.Secrets {
				profSecrets[k] = v
			}
			for k, v := range pc.Providers {
				profProviders[k] = v
			}
		}
	}

	secrets := copyBindings(topSecrets)
	for k, v := range profSecrets {
		secrets[k] = v
	}

	providers := copyProviders(topProviders)
	for k, v := range profProviders {
		providers[k] = v
	}

	return &ResolvedProfile{
		Profile:   profile,
		Secrets:   secrets,
		Providers: providers,
		IfMissing: ifMissing,
	}, nil
}

func copyBindings(src map[string]Binding) map[string]Binding {
	dst := make(map[string]Binding, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyProviders(src map[string]ProviderDecl) map[string]ProviderDecl {
	dst := make(map[string]ProviderDecl, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
