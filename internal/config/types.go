// Package config implements the layered configuration model: discovery of
// fnox.toml files across a directory hierarchy, parsing, import resolution,
// and deep key-wise merging into a single ResolvedProfile.
package config

// IfMissing names the policy applied to a binding that resolves to no value.
type IfMissing string

const (
	IfMissingError  IfMissing = "error"
	IfMissingWarn   IfMissing = "warn"
	IfMissingIgnore IfMissing = "ignore"
)

// Ref is the `{ secret = "NAME" }` sentinel that may appear as a provider
// attribute value, indicating late binding to another secret in the same
// ResolvedProfile.
type Ref struct {
	Secret string
}

// Attr is a single provider attribute value: either a literal (string, bool,
// number, as decoded by the TOML parser) or a Ref sentinel.
type Attr struct {
	Ref     *Ref
	Literal any
}

// IsRef reports whether this attribute is an unresolved provider-config
// reference.
func (a Attr) IsRef() bool { return a.Ref != nil }

// Binding is the unit of configuration, keyed by a user-chosen
// environment-variable name.
type Binding struct {
	Provider    string    `toml:"provider"`
	Value       string    `toml:"value"`
	Default     string    `toml:"default"`
	KeyName     string    `toml:"key_name"`
	Description string    `toml:"description"`
	IfMissing   IfMissing `toml:"if_missing"`
	JSONPath    string    `toml:"json_path"`
}

// ProviderDecl is a named provider declaration with a discriminated type tag
// and a free-form attribute set. Attribute values are either literals or the
// `{ secret = "NAME" }` sentinel.
type ProviderDecl struct {
	Type  string
	Attrs map[string]Attr
}

// ProfileConfig is the `[profiles.NAME]` section: a profile-scoped overlay
// of secrets and providers.
type ProfileConfig struct {
	Secrets   map[string]Binding
	Providers map[string]ProviderDecl
}

// Config is a single parsed file's contents.
type Config struct {
	// Path is the absolute filesystem path this Config was loaded from, or
	// empty for a synthetic/in-memory config.
	Path string

	Root      bool
	Import    []string
	IfMissing IfMissing
	Secrets   map[string]Binding
	Providers map[string]ProviderDecl
	Profiles  map[string]ProfileConfig
}

// LayeredConfig is an ordered stack of Configs, lowest-priority first: the
// global config, then each ancestor directory's files from outermost to
// innermost.
type LayeredConfig struct {
	Layers []*Config
}

// ResolvedProfile is a flattened view for one profile name: the union of
// top-level and profile-specific providers and secrets, where profile
// entries override top-level entries by binding key and provider name.
type ResolvedProfile struct {
	Profile   string
	Secrets   map[string]Binding
	Providers map[string]ProviderDecl
	IfMissing IfMissing
}
