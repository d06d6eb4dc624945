// Package ferr names the error-kind taxonomy from spec §7 and maps each
// kind to the process exit code from spec §6, on top of plain fmt.Errorf
// wrapping — the teacher's own texture, not a verbose UserError hierarchy.
package ferr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds enumerated in spec §7.
type Kind string

const (
	ConfigParse         Kind = "ConfigParse"
	ConfigCycle         Kind = "ConfigCycle"
	UnknownProvider      Kind = "UnknownProvider"
	UnknownSecret        Kind = "UnknownSecret"
	ProviderValidation   Kind = "ProviderValidation"
	ProviderUnavailable  Kind = "ProviderUnavailable"
	AuthMissing          Kind = "AuthMissing"
	AuthExpired          Kind = "AuthExpired"
	NetworkTimeout       Kind = "NetworkTimeout"
	CryptoError          Kind = "CryptoError"
	MissingSecret        Kind = "MissingSecret"
	WriteRefused         Kind = "WriteRefused"
	IOError              Kind = "IOError"
	Misuse               Kind = "Misuse"
)

// Error pairs a Kind with a wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a *Error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error of the given kind wrapping err.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// ExitCode maps an error to the process exit code defined in spec §6:
// 0 success; 1 general error; 2 misuse; 3 missing-required-secret; 4
// auth/credential error; 5 cycle/config-cycle error. No error kind maps to
// 130, and no command path exits with 130 on SIGINT.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	kind, ok := KindOf(err)
	if !ok {
		return 1
	}

	switch kind {
	case Misuse:
		return 2
	case MissingSecret:
		return 3
	case AuthMissing, AuthExpired:
		return 4
	case ConfigCycle:
		return 5
	default:
		return 1
	}
}
