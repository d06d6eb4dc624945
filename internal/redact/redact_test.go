package redact

import "testing"

func TestRedactReplacesKnownSecrets(t *testing.T) {
	out := Redact("password=hunter22 and token=abcd1234", []string{"hunter22", "abcd1234"})
	want := "password=*** and token=***"
	if out != want {
		t.Fatalf("Redact() = %q, want %q", out, want)
	}
}

func TestRedactSkipsShortValues(t *testing.T) {
	out := Redact("code=x is not a secret", []string{"x"})
	if out != "code=x is not a secret" {
		t.Fatalf("Redact() should not touch values shorter than minLen, got %q", out)
	}
}

func TestRedactNoMatchesIsNoop(t *testing.T) {
	out := Redact("nothing sensitive here", []string{"unrelated-secret-value"})
	if out != "nothing sensitive here" {
		t.Fatalf("Redact() = %q, want unchanged input", out)
	}
}

func TestScanFindsOccurrenceWithLineNumber(t *testing.T) {
	content := "line one\npassword is hunter22-secret\nline three\n"
	occ := Scan("config.yaml", content, map[string]string{"DB_PASSWORD": "hunter22-secret"})

	if len(occ) != 1 {
		t.Fatalf("Scan() returned %d occurrences, want 1", len(occ))
	}
	if occ[0].Line != 2 {
		t.Errorf("Line = %d, want 2", occ[0].Line)
	}
	if occ[0].Key != "DB_PASSWORD" {
		t.Errorf("Key = %q, want DB_PASSWORD", occ[0].Key)
	}
	if occ[0].Path != "config.yaml" {
		t.Errorf("Path = %q, want config.yaml", occ[0].Path)
	}
}

func TestScanSkipsShortValues(t *testing.T) {
	occ := Scan("f.txt", "a=1\nb=2\n", map[string]string{"SHORT": "1"})
	if len(occ) != 0 {
		t.Fatalf("Scan() found %d occurrences for a too-short value, want 0", len(occ))
	}
}

func TestScanMultipleValuesSameLine(t *testing.T) {
	occ := Scan("f.txt", "user=admin1234 pass=secret5678\n", map[string]string{
		"USER": "admin1234",
		"PASS": "secret5678",
	})
	if len(occ) != 2 {
		t.Fatalf("Scan() found %d occurrences, want 2", len(occ))
	}
}
