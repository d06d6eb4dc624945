package shellstate

import (
	"strings"
	"testing"
)

func TestRenderDiffBashUsesExportAndUnset(t *testing.T) {
	diff := Diff{Add: []string{"API_KEY"}, Unset: []string{"OLD_KEY"}}
	values := map[string]string{"API_KEY": "it's a secret"}

	out := RenderDiff(Bash, diff, values, "session-payload")

	if !strings.Contains(out, "unset OLD_KEY;") {
		t.Errorf("missing unset for removed key: %s", out)
	}
	if !strings.Contains(out, `export API_KEY='it'\''s a secret';`) {
		t.Errorf("missing escaped export for added key: %s", out)
	}
	if !strings.Contains(out, "export __FNOX_SESSION='session-payload';") {
		t.Errorf("missing session export: %s", out)
	}
}

func TestRenderDiffFishUsesSetCommands(t *testing.T) {
	diff := Diff{Add: []string{"API_KEY"}, Unset: []string{"OLD_KEY"}}
	values := map[string]string{"API_KEY": "value"}

	out := RenderDiff(Fish, diff, values, "payload")

	if !strings.Contains(out, "set -e OLD_KEY;") {
		t.Errorf("missing fish unset: %s", out)
	}
	if !strings.Contains(out, "set -gx API_KEY 'value';") {
		t.Errorf("missing fish export: %s", out)
	}
}

func TestHumanDiffLineFormat(t *testing.T) {
	line := HumanDiffLine(Diff{Add: []string{"B", "A"}, Unset: []string{"C"}})
	if line != "+2 A,B -1 C" {
		t.Fatalf("HumanDiffLine = %q", line)
	}
}

func TestActivateScriptNamesHookEnv(t *testing.T) {
	for _, sh := range []Shell{Bash, Zsh, Fish} {
		out := ActivateScript(sh, "fnox")
		if !strings.Contains(out, "hook-env") {
			t.Errorf("%s activate script missing hook-env call: %s", sh, out)
		}
	}
}
