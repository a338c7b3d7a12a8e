// Package knownvalue implements a registry mapping unsigned integers to
// human-readable names, carried as CBOR tag 40000 content.
package knownvalue

import "strconv"

// Tag is the CBOR tag number used to mark a known-value payload.
const Tag uint64 = 40000

// registry holds the small built-in set of well-known names. A real
// deployment would load this from the Blockchain Commons known-values
// registry; here it carries enough entries to exercise the pattern
// engine's own tests and its unrecognized-value fallback behavior.
var registry = map[uint64]string{
	0:  "isA",
	1:  "id",
	2:  "signed",
	3:  "note",
	4:  "hasRecipient",
	7:  "diffEdits",
	10: "verifiedBy",
	11: "referenceTo",
	100: "Seed",
	101: "PrivateKey",
	102: "PublicKey",
	200: "body",
}

var byName = func() map[string]uint64 {
	m := make(map[string]uint64, len(registry))
	for k, v := range registry {
		m[v] = k
	}
	return m
}()

// Name returns the canonical display name for u, falling back to its
// decimal form when the registry has no entry.
func Name(u uint64) string {
	if n, ok := registry[u]; ok {
		return n
	}
	return strconv.FormatUint(u, 10)
}

// Lookup returns the numeric value registered under name, if any.
func Lookup(name string) (uint64, bool) {
	u, ok := byName[name]
	return u, ok
}
