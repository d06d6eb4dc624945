// Package redact finds or masks literal occurrences of resolved secret
// values in text, backing the `scan` and `ci-redact` commands. Directly
// grounded on systmms-dsops/internal/logging/logging.go's Secret/Redact
// idiom, generalized from a single log line to a whole file tree (scan)
// and a streamed reader (ci-redact).
package redact

import "strings"

// minLen mirrors the "len(secret) > 3" guard of the Redact idiom named in
// the package doc: short values (a
// single-character default, an empty string) are too likely to produce
// false positives to redact safely.
const minLen = 4

// Redact replaces every literal occurrence of each value in secrets with
// "***". Values shorter than minLen are skipped.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) >= minLen {
			result = strings.ReplaceAll(result, secret, "***")
		}
	}
	return result
}

// Occurrence is one literal match of a secret value found in a file.
type Occurrence struct {
	Key  string // the binding key the matched value belongs to
	Path string
	Line int
}

// Scan walks content line by line looking for any of values (keyed by
// binding name) and returns every match. Values shorter than minLen are
// skipped, for the same reason Redact skips them.
func Scan(path string, content string, values map[string]string) []Occurrence {
	var out []Occurrence
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		for key, val := range values {
			if len(val) >= minLen && strings.Contains(line, val) {
				out = append(out, Occurrence{Key: key, Path: path, Line: i + 1})
			}
		}
	}
	return out
}
