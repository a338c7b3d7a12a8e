// Package digest represents a 32-byte SHA-256 hash encoded under CBOR
// tag 40001.
package digest

import (
	"encoding/hex"
	"fmt"
)

// Tag is the CBOR tag number marking a digest value.
const Tag uint64 = 40001

// Size is the fixed byte length of a digest.
const Size = 32

// Digest is an immutable 32-byte value.
type Digest [Size]byte

// FromHex parses a hex string into a Digest. Returns an error if the
// string is not exactly 64 hex characters.
func FromHex(s string) (Digest, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: invalid hex: %w", err)
	}
	if len(b) != Size {
		return Digest{}, fmt.Errorf("digest: expected %d bytes, got %d", Size, len(b))
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

// Data returns the digest's 32 raw bytes.
func (d Digest) Data() []byte { return d[:] }

// HasPrefix reports whether the digest's bytes begin with prefix.
func (d Digest) HasPrefix(prefix []byte) bool {
	if len(prefix) > len(d) {
		return false
	}
	for i, b := range prefix {
		if d[i] != b {
			return false
		}
	}
	return true
}

// Equal reports byte-for-byte equality.
func (d Digest) Equal(other Digest) bool { return d == other }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
