package resolve

import "testing"

func TestExtractJSONPathNestedValue(t *testing.T) {
	payload := `{"db": {"credentials": {"password": "s3cr3t"}}}`

	v, ok, err := ExtractJSONPath(payload, "db.credentials.password")
	if err != nil {
		t.Fatalf("ExtractJSONPath() error: %v", err)
	}
	if !ok {
		t.Fatal("ExtractJSONPath() ok = false, want true")
	}
	if v != "s3cr3t" {
		t.Fatalf("ExtractJSONPath() = %q, want s3cr3t", v)
	}
}

func TestExtractJSONPathMissingSegmentIsMiss(t *testing.T) {
	_, ok, err := ExtractJSONPath(`{"a": {"b": "c"}}`, "a.missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss for a missing path segment")
	}
}

func TestExtractJSONPathNonStringLeafIsMiss(t *testing.T) {
	_, ok, err := ExtractJSONPath(`{"a": {"b": 42}}`, "a.b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss for a non-string leaf value")
	}
}

func TestExtractJSONPathEscapedDot(t *testing.T) {
	payload := `{"a.b": "literal-dot-key"}`
	v, ok, err := ExtractJSONPath(payload, `a\.b`)
	if err != nil {
		t.Fatalf("ExtractJSONPath() error: %v", err)
	}
	if !ok || v != "literal-dot-key" {
		t.Fatalf("ExtractJSONPath() = (%q, %v), want (literal-dot-key, true)", v, ok)
	}
}

func TestExtractJSONPathMalformedPathErrors(t *testing.T) {
	_, _, err := ExtractJSONPath(`{}`, "a..b")
	if err == nil {
		t.Fatal("expected an error for an empty path segment")
	}
}

func TestExtractJSONPathInvalidJSONErrors(t *testing.T) {
	_, _, err := ExtractJSONPath("not json", "a")
	if err == nil {
		t.Fatal("expected an error for invalid JSON payload")
	}
}

func TestLooksLikeJSON(t *testing.T) {
	cases := map[string]bool{
		`{"a": 1}`:        true,
		`  {"a": 1}  `:    true,
		`plain string`:    false,
		`["a", "b"]`:      false,
		"":                false,
	}
	for input, want := range cases {
		if got := LooksLikeJSON(input); got != want {
			t.Errorf("LooksLikeJSON(%q) = %v, want %v", input, got, want)
		}
	}
}
