package config

import (
	"bytes"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// rawProfile mirrors the TOML shape of a `[profiles.NAME]` table.
type rawProfile struct {
	Secrets   map[string]Binding      `toml:"secrets"`
	Providers map[string]ProviderDecl `toml:"providers"`
}

// rawFile mirrors the full TOML shape of a single fnox config file.
type rawFile struct {
	Root      bool                     `toml:"root"`
	Import    []string                 `toml:"import"`
	IfMissing IfMissing                `toml:"if_missing"`
	Secrets   map[string]Binding       `toml:"secrets"`
	Providers map[string]ProviderDecl  `toml:"providers"`
	Profiles  map[string]rawProfile    `toml:"profiles"`
}

// LoadConfig parses a single fnox config file at path. Unknown top-level
// keys and unknown binding fields are rejected; unknown provider fields are
// accepted here and left for the provider's own Validate to reject or use.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(path, data)
}

// ParseConfig parses TOML bytes into a Config, attributing path to any error
// message for diagnostics.
func ParseConfig(path string, data []byte) (*Config, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawFile
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := &Config{
		Path:      path,
		Root:      raw.Root,
		Import:    raw.Import,
		IfMissing: raw.IfMissing,
		Secrets:   raw.Secrets,
		Providers: raw.Providers,
		Profiles:  make(map[string]ProfileConfig, len(raw.Profiles)),
	}
	for name, p := range raw.Profiles {
		cfg.Profiles[name] = ProfileConfig{
			Secrets:   p.Secrets,
			Providers: p.Providers,
		}
	}

	return cfg, nil
}
