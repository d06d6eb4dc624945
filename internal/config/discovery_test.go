package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverStopsAtRootLevel(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "child", "grandchild")

	writeFile(t, filepath.Join(root, "fnox.toml"), "root = true\n\n[secrets.OUTER]\ndefault = \"outer\"\n")
	writeFile(t, filepath.Join(root, "child", "fnox.toml"), "[secrets.MIDDLE]\ndefault = \"middle\"\n")
	writeFile(t, filepath.Join(sub, "fnox.toml"), "[secrets.INNER]\ndefault = \"inner\"\n")

	layered, err := Discover(sub, "default")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	rp, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	for _, key := range []string{"OUTER", "MIDDLE", "INNER"} {
		if _, ok := rp.Secrets[key]; !ok {
			t.Errorf("expected secret %q to be discovered, got %v", key, rp.Secrets)
		}
	}
}

func TestDiscoverDoesNotWalkPastRoot(t *testing.T) {
	outside := t.TempDir()
	root := filepath.Join(outside, "project")

	writeFile(t, filepath.Join(outside, "fnox.toml"), "[secrets.SHOULD_NOT_APPEAR]\ndefault = \"leaked\"\n")
	writeFile(t, filepath.Join(root, "fnox.toml"), "root = true\n\n[secrets.PRESENT]\ndefault = \"ok\"\n")

	layered, err := Discover(root, "default")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	rp, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if _, ok := rp.Secrets["SHOULD_NOT_APPEAR"]; ok {
		t.Fatal("Discover() walked past a root=true level")
	}
	if _, ok := rp.Secrets["PRESENT"]; !ok {
		t.Fatal("Discover() missed the root level's own secrets")
	}
}

func TestDiscoverProfileSpecificFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fnox.toml"), "root = true\n")
	writeFile(t, filepath.Join(root, "fnox.staging.toml"), "[secrets.STAGING_ONLY]\ndefault = \"s\"\n")

	layeredDefault, err := Discover(root, "default")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	rpDefault, _ := Merge(layeredDefault, "default")
	if _, ok := rpDefault.Secrets["STAGING_ONLY"]; ok {
		t.Fatal("default profile should not pick up fnox.staging.toml")
	}

	layeredStaging, err := Discover(root, "staging")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	rpStaging, _ := Merge(layeredStaging, "staging")
	if _, ok := rpStaging.Secrets["STAGING_ONLY"]; !ok {
		t.Fatal("staging profile should pick up fnox.staging.toml")
	}
}

func TestDiscoverDotPrefixedVariantEquivalent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".fnox.toml"), "root = true\n\n[secrets.DOTTED]\ndefault = \"ok\"\n")

	layered, err := Discover(root, "default")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	rp, _ := Merge(layered, "default")
	if _, ok := rp.Secrets["DOTTED"]; !ok {
		t.Fatal("dot-prefixed .fnox.toml was not discovered")
	}
}

func TestDiscoverImportCycleErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fnox.toml"), "root = true\nimport = [\"b.toml\"]\n")
	writeFile(t, filepath.Join(root, "b.toml"), "import = [\"fnox.toml\"]\n")

	_, err := Discover(root, "default")
	if err == nil {
		t.Fatal("expected an import cycle error")
	}
}
