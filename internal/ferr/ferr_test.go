package ferr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain error"), 1},
		{New(Misuse, "bad flag"), 2},
		{New(MissingSecret, "no value"), 3},
		{New(AuthMissing, "no token"), 4},
		{New(AuthExpired, "token expired"), 4},
		{New(ConfigCycle, "cycle"), 5},
		{New(IOError, "disk full"), 1},
	}

	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrapPreservesCauseViaUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	wrapped := Wrap(CryptoError, cause, "decrypting %q", "KEY")

	if !errors.Is(wrapped, cause) {
		t.Fatal("Wrap() result does not unwrap to the original cause")
	}

	kind, ok := KindOf(wrapped)
	if !ok || kind != CryptoError {
		t.Fatalf("KindOf() = (%v, %v), want (CryptoError, true)", kind, ok)
	}
}

func TestKindOfFalseForPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("not a ferr.Error"))
	if ok {
		t.Fatal("KindOf() should return false for a plain error")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(IOError, errors.New("disk full"), "writing %q", "config.toml")
	want := `writing "config.toml": disk full`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOfThroughFmtWrap(t *testing.T) {
	inner := New(ProviderUnavailable, "vault unreachable")
	outer := fmt.Errorf("binding %q: %w", "API_KEY", inner)

	kind, ok := KindOf(outer)
	if !ok || kind != ProviderUnavailable {
		t.Fatalf("KindOf() through fmt.Errorf wrap = (%v, %v)", kind, ok)
	}
}
