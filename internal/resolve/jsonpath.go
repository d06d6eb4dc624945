package resolve

import (
	"encoding/json"
	"fmt"
	"strings"
)

// splitJSONPath splits a dotted path into its segments. A backslash escapes
// a literal dot within a segment (spec §9: "Implement dotted-path with
// backslash-escaped literal dots").
func splitJSONPath(path string) ([]string, error) {
	var segs []string
	var cur strings.Builder
	escaped := false

	for _, r := range path {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("malformed json_path %q: trailing escape", path)
	}
	segs = append(segs, cur.String())

	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("malformed json_path %q: empty segment", path)
		}
	}

	return segs, nil
}

// ExtractJSONPath extracts a string value from a JSON payload at the given
// dotted path. A path that does not match the payload's shape returns
// (_, false, nil) — a Miss, not an error, per spec §4.4.
func ExtractJSONPath(payload string, path string) (string, bool, error) {
	segs, err := splitJSONPath(path)
	if err != nil {
		return "", false, err
	}

	var root any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return "", false, fmt.Errorf("json_path extraction: %w", err)
	}

	cur := root
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false, nil
		}
		v, ok := m[seg]
		if !ok {
			return "", false, nil
		}
		cur = v
	}

	switch v := cur.(type) {
	case string:
		return v, true, nil
	default:
		return "", false, nil
	}
}

// LooksLikeJSON reports whether payload looks like a JSON object, per the
// spec §4.4 rule: "if the returned payload starts with `{`... extract the
// dotted path".
func LooksLikeJSON(payload string) bool {
	trimmed := strings.TrimSpace(payload)
	return strings.HasPrefix(trimmed, "{")
}
