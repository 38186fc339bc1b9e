package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// ShardPrefixLen is the number of fingerprint characters used as shard directory name
	ShardPrefixLen = 10
	// FingerprintLen is the length of a hex encoded SHA-256 digest
	FingerprintLen = sha256.Size * 2
	// KeySuffix is appended to the fingerprint to name the key file
	KeySuffix = ".key"
	// ValueSuffix is appended to the fingerprint to name the value file
	ValueSuffix = ".value"
)

// --------------------------------------------------------------------------
// Fingerprint
// --------------------------------------------------------------------------

// Fingerprint is the hex encoded digest of an encoded key.
type Fingerprint string

// Digest derives the fingerprint of the given encoded key bytes.
// Equal input bytes always yield equal fingerprints.
func Digest(encodedKey []byte) Fingerprint {
	sum := sha256.Sum256(encodedKey)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Shard returns the shard directory name of the fingerprint
func (f Fingerprint) Shard() string {
	if len(f) < ShardPrefixLen {
		return string(f)
	}
	return string(f[:ShardPrefixLen])
}

// KeyFileName returns the base name of the key file
func (f Fingerprint) KeyFileName() string {
	return string(f) + KeySuffix
}

// ValueFileName returns the base name of the value file
func (f Fingerprint) ValueFileName() string {
	return string(f) + ValueSuffix
}

// Valid reports whether f looks like a fingerprint produced by Digest
func (f Fingerprint) Valid() bool {
	if len(f) != FingerprintLen {
		return false
	}
	_, err := hex.DecodeString(string(f))
	return err == nil && strings.ToLower(string(f)) == string(f)
}

// --------------------------------------------------------------------------
// File name helpers
// --------------------------------------------------------------------------

// IsKeyFile reports whether name is the name of a key file
func IsKeyFile(name string) bool {
	return strings.HasSuffix(name, KeySuffix)
}

// IsValueFile reports whether name is the name of a value file
func IsValueFile(name string) bool {
	return strings.HasSuffix(name, ValueSuffix)
}

// FingerprintOf extracts the fingerprint from a key or value file name.
// The boolean is false if name carries neither suffix.
func FingerprintOf(name string) (Fingerprint, bool) {
	switch {
	case IsKeyFile(name):
		return Fingerprint(strings.TrimSuffix(name, KeySuffix)), true
	case IsValueFile(name):
		return Fingerprint(strings.TrimSuffix(name, ValueSuffix)), true
	default:
		return "", false
	}
}
