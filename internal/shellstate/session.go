// Package shellstate implements the shell-hook state machine from spec
// §4.5: a per-prompt diff between the previous and current binding set,
// driven entirely by hashes so the previous session payload never carries
// plaintext.
package shellstate

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EnvVar is the shell variable the opaque session payload lives in.
const EnvVar = "__FNOX_SESSION"

// Session is the decoded contents of __FNOX_SESSION: never plaintext, only
// hashes (spec §4.5 "Security rule").
type Session struct {
	Dir         string            `json:"dir"`
	Profile     string            `json:"profile"`
	ConfigHash  string            `json:"config_hash"`
	ValueHashes map[string]string `json:"value_hashes"`
}

// Hash returns the hex sha256 digest of s, used both for config-file
// content hashing and per-binding value hashing.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Encode serializes a Session into the opaque base64 payload stored in
// __FNOX_SESSION.
func Encode(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses a __FNOX_SESSION payload. An empty or malformed payload
// decodes to the zero Session (spec §4.5 step 3 implicitly treats a first
// invocation, with no previous state, as an empty previous set) rather
// than erroring — the hook must never crash the shell.
func Decode(payload string) Session {
	if payload == "" {
		return Session{ValueHashes: map[string]string{}}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Session{ValueHashes: map[string]string{}}
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{ValueHashes: map[string]string{}}
	}
	if s.ValueHashes == nil {
		s.ValueHashes = map[string]string{}
	}
	return s
}

// Diff computes the per-prompt algorithm's steps 4-5: keys present in prev
// but not curr are unsets; keys in curr whose hash is new or differs from
// prev are adds (the caller emits exports only for these).
type Diff struct {
	Unset []string
	Add   []string
}

func ComputeDiff(prev Session, currHashes map[string]string) Diff {
	var d Diff

	for key := range prev.ValueHashes {
		if _, ok := currHashes[key]; !ok {
			d.Unset = append(d.Unset, key)
		}
	}
	for key, hash := range currHashes {
		if prevHash, ok := prev.ValueHashes[key]; !ok || prevHash != hash {
			d.Add = append(d.Add, key)
		}
	}

	return d
}
