package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.dot.industries/vx/internal/ferr"
)

// GlobalConfigPath returns the path to the global config file:
// $FNOX_CONFIG_DIR/config.toml, defaulting to ~/.config/fnox/config.toml.
func GlobalConfigPath() (string, error) {
	if dir := os.Getenv("FNOX_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fnox", "config.toml"), nil
}

// slotVariants returns the equivalent filenames for one discovery "slot"
// (dot-prefixed and bare forms are equivalent).
func slotVariants(name string) []string {
	return []string{name, "." + name}
}

// levelFilenames returns, in increasing priority order, the filenames
// recognized at a single directory level for the given active profile.
func levelFilenames(profile string) [][]string {
	slots := [][]string{slotVariants("fnox.toml")}
	if profile != "" && profile != "default" {
		slots = append(slots, slotVariants(fmt.Sprintf("fnox.%s.toml", profile)))
	}
	slots = append(slots, slotVariants("fnox.local.toml"))
	return slots
}

// findInDir returns the first existing variant in dir, or "" if none exist.
func findInDir(dir string, variants []string) string {
	for _, v := range variants {
		candidate := filepath.Join(dir, v)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Discover walks upward from startDir, collecting config file layers in
// priority order (global config first, then each ancestor directory from
// outermost to innermost, innermost being startDir itself). Upward
// traversal stops at the first ancestor level where any of its config files
// declares root = true; that level's files are still included.
// Imports are resolved and spliced in at a lower priority than the
// importing file, recursively, with cycle detection.
func Discover(startDir string, profile string) (*LayeredConfig, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for %s: %w", startDir, err)
	}

	var dirs []string
	dir := absStart
	for {
		dirs = append(dirs, dir)

		levelHasRoot, err := dirDeclaresRoot(dir, profile)
		if err != nil {
			return nil, err
		}
		if levelHasRoot {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Reverse to outermost-first.
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}

	layered := &LayeredConfig{}

	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(globalPath); err == nil {
		cfg, err := LoadConfig(globalPath)
		if err != nil {
			return nil, err
		}
		layers, err := expandImports(cfg, filepath.Dir(globalPath), map[string]bool{globalPath: true})
		if err != nil {
			return nil, err
		}
		layered.Layers = append(layered.Layers, layers...)
	}

	for _, d := range dirs {
		for _, variants := range levelFilenames(profile) {
			path := findInDir(d, variants)
			if path == "" {
				continue
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}

			layers, err := expandImports(cfg, d, map[string]bool{path: true})
			if err != nil {
				return nil, err
			}
			layered.Layers = append(layered.Layers, layers...)
		}
	}

	return layered, nil
}

// dirDeclaresRoot reports whether any file at this directory level declares
// root = true.
func dirDeclaresRoot(dir string, profile string) (bool, error) {
	for _, variants := range levelFilenames(profile) {
		path := findInDir(dir, variants)
		if path == "" {
			continue
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			return false, err
		}
		if cfg.Root {
			return true, nil
		}
	}
	return false, nil
}

// expandImports resolves a config's `import` list, recursively, returning
// the imported layers (lowest priority first) followed by cfg itself
// (highest priority of the group). visited tracks paths already on the
// current import chain to detect cycles.
func expandImports(cfg *Config, baseDir string, visited map[string]bool) ([]*Config, error) {
	var result []*Config

	for _, rel := range cfg.Import {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, rel)
		}
		path = filepath.Clean(path)

		if visited[path] {
			return nil, ferr.New(ferr.ConfigCycle, "import cycle detected: %s imports %s", cfg.Path, path)
		}

		imported, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		childVisited := make(map[string]bool, len(visited)+1)
		for k, v := range visited {
			childVisited[k] = v
		}
		childVisited[path] = true

		nested, err := expandImports(imported, filepath.Dir(path), childVisited)
		if err != nil {
			return nil, err
		}
		result = append(result, nested...)
	}

	result = append(result, cfg)
	return result, nil
}
