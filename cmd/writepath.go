package cmd

import (
	"os"
	"path/filepath"

	"go.dot.industries/vx/internal/config"
)

// writableConfigPath returns the path that `set`/`remove`/`import` should
// write to: the global config under --global, an explicit --config path,
// or the innermost fnox.toml in the current directory (created if absent).
func writableConfigPath() (string, error) {
	if flagGlobal {
		path, err := config.GlobalConfigPath()
		if err != nil {
			return "", err
		}
		if err := ensureFile(path); err != nil {
			return "", err
		}
		return path, nil
	}

	if flagConfigPath != "" {
		if err := ensureFile(flagConfigPath); err != nil {
			return "", err
		}
		return flagConfigPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cwd, "fnox.toml")
	if err := ensureFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// sectionPathForProfile returns the section path a binding/provider should
// live under for the active profile: ["secrets"]/["providers"] at the top
// level for "default", or ["profiles", name, "secrets"/"providers"]
// otherwise.
func sectionPathForProfile(profile string, kind string) []string {
	if profile == "" || profile == "default" {
		return []string{kind}
	}
	return []string{"profiles", profile, kind}
}

func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte{}, 0o644)
}
