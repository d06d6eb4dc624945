package shellstate

import (
	"os"
	"strings"

	"go.dot.industries/vx/internal/config"
)

// ConfigHash hashes the combined raw content of every layer file backing a
// LayeredConfig, in layer order, so any edit to any layer (or an import
// being added/removed) changes the hash. Layers with no backing file
// (synthetic single-layer configs loaded via --config, or imports the
// caller already folded in) are hashed by path alone if unreadable.
func ConfigHash(layered *config.LayeredConfig) string {
	var b strings.Builder
	for _, layer := range layered.Layers {
		b.WriteString(layer.Path)
		b.WriteByte(0)
		if raw, err := os.ReadFile(layer.Path); err == nil {
			b.Write(raw)
		}
		b.WriteByte(0)
	}
	return Hash(b.String())
}
