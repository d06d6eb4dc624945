// Package tomlfile provides format-preserving edits to fnox.toml files:
// inserting, updating, and removing a single binding's `[secrets]` or
// `[profiles.NAME.secrets]` entry without disturbing unrelated content,
// comments, or ordering. Directly grounded on the teacher's
// internal/tui/bridge/toml_editor.go, generalized from a single flat
// [secrets] section to an arbitrary dotted section path and widened from
// one string value to a full inline key/value table ({provider=..,
// value=.., default=.., ...}).
package tomlfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/creachadair/tomledit/transform"
)

// Fields is the set of inline-table key/value pairs to write for a
// binding or provider declaration (e.g. {provider="age", value="..."}).
// The map itself is unordered; inlineTableValue writes the pairs sorted by key.
type Fields map[string]string

// SetBinding inserts or updates KEY under the given section path (e.g.
// []string{"secrets"} or []string{"profiles", "prod", "secrets"}) in
// filePath, preserving unrelated content and formatting. The write is
// atomic: the new content is written to a temp file in the same directory,
// fsynced, then renamed over the original (spec §4.6 / I6).
func SetBinding(filePath string, sectionPath []string, key string, fields Fields) error {
	doc, mode, err := readDoc(filePath)
	if err != nil {
		return err
	}

	section := findOrCreateSection(doc, sectionPath)

	kv := &parser.KeyValue{
		Name:  parser.Key{key},
		Value: inlineTableValue(fields),
	}

	if entry := doc.First(append(append([]string{}, sectionPath...), key)...); entry != nil {
		entry.KeyValue.Value = kv.Value
	} else {
		transform.InsertMapping(section, kv, false)
	}

	return writeDocAtomic(filePath, doc, mode)
}

// RemoveBinding deletes KEY from the section path, returning an error if it
// is not present.
func RemoveBinding(filePath string, sectionPath []string, key string) error {
	doc, mode, err := readDoc(filePath)
	if err != nil {
		return err
	}

	entry := doc.First(append(append([]string{}, sectionPath...), key)...)
	if entry == nil {
		return fmt.Errorf("%q not found under [%s] in %s", key, joinPath(sectionPath), filePath)
	}
	if !entry.Remove() {
		return fmt.Errorf("failed to remove %q from %s", key, filePath)
	}

	return writeDocAtomic(filePath, doc, mode)
}

func readDoc(filePath string) (*tomledit.Document, os.FileMode, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", filePath, err)
	}

	doc, err := tomledit.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing TOML in %s: %w", filePath, err)
	}

	return doc, info.Mode(), nil
}

// writeDocAtomic serializes doc and replaces filePath via a temp-file
// write + fsync + rename, so a crash mid-write never leaves a truncated
// config on disk (spec I6: round-trip-safe edit).
func writeDocAtomic(filePath string, doc *tomledit.Document, mode os.FileMode) error {
	var buf bytes.Buffer
	var fmtr tomledit.Formatter
	if err := fmtr.Format(&buf, doc); err != nil {
		return fmt.Errorf("formatting TOML: %w", err)
	}

	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".fnox-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

func findOrCreateSection(doc *tomledit.Document, path []string) *tomledit.Section {
	entries := doc.Find(path...)
	for _, e := range entries {
		if e.IsSection() {
			return e.Section
		}
	}

	section := &tomledit.Section{
		Heading: &parser.Heading{Name: parser.Key(append([]string{}, path...))},
	}
	doc.Sections = append(doc.Sections, section)
	return section
}

// inlineTableValue builds an inline-table TOML value ({key = "val", ...})
// by rendering its literal text and handing it to the parser, rather than
// constructing the AST by hand — the same trick the teacher's code uses
// for plain string values (parser.MustValue(fmt.Sprintf("%q", v)))
// generalized to a whole table.
func inlineTableValue(fields Fields) *parser.Value {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s = %q", name, fields[name]))
	}

	return parser.MustValue("{ " + strings.Join(parts, ", ") + " }")
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}
