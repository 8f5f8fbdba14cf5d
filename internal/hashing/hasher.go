// Package hashing provides content digests for regeneration gating. Digests
// are SHA-256 over either raw bytes or a canonical JSON serialization of a
// value with volatile fields stripped.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// Digest is a fixed-length hexadecimal content hash.
type Digest string

// HashBytes computes the digest of raw bytes.
func HashBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// HashFile computes the digest of a file's contents.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", mberrors.Wrap(err, mberrors.CategoryFileSystem, mberrors.SeverityFatal, "failed to read file for hashing").
			WithContext("path", path)
	}
	return HashBytes(data), nil
}

// HashCanonicalObject computes the digest of a value's canonical JSON form,
// with the given top-level keys stripped before serialization. Map keys are
// serialized in sorted order, so two logically equal values hash identically
// regardless of insertion order. Excluded keys are the inherently volatile
// fields (e.g. a build timestamp) that must not trigger regeneration.
func HashCanonicalObject(v any, excludeKeys []string) (Digest, error) {
	canonical, err := canonicalize(v, excludeKeys)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", mberrors.HashingFailed("canonical object", err)
	}
	return HashBytes(data), nil
}

// canonicalize round-trips the value through JSON to obtain a representation
// with deterministic key ordering, then strips excluded top-level keys from
// the deep copy (the caller's value is never mutated). A value that cannot be
// marshaled (cyclic structure, channels, funcs) yields a serialization error.
func canonicalize(v any, excludeKeys []string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, mberrors.HashingFailed("object serialization", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, mberrors.HashingFailed("object canonicalization", err)
	}

	if m, ok := generic.(map[string]any); ok {
		for _, key := range excludeKeys {
			delete(m, key)
		}
	}
	return generic, nil
}

// String implements fmt.Stringer.
func (d Digest) String() string { return string(d) }

// Short returns a truncated digest suitable for log lines.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d[:12])
}
