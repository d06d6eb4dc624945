package shellstate

import (
	"os"
	"path/filepath"
	"testing"

	"go.dot.industries/vx/internal/config"
)

func TestConfigHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnox.toml")
	if err := os.WriteFile(path, []byte("root = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	layered := &config.LayeredConfig{Layers: []*config.Config{{Path: path}}}
	before := ConfigHash(layered)

	if err := os.WriteFile(path, []byte("root = true\n\n[secrets.FOO]\ndefault = \"bar\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	after := ConfigHash(layered)

	if before == after {
		t.Fatal("ConfigHash did not change after editing the layer file")
	}
}

func TestConfigHashStableForSameContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fnox.toml")
	if err := os.WriteFile(path, []byte("root = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	layered := &config.LayeredConfig{Layers: []*config.Config{{Path: path}}}
	if ConfigHash(layered) != ConfigHash(layered) {
		t.Fatal("ConfigHash is not stable across calls")
	}
}
