package utils

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprinter produces stable, non-reversible identifiers for secrets
// so they can be correlated across log lines without being exposed
type Fingerprinter struct {
	length int
}

// NewFingerprinter creates a fingerprinter emitting hex prefixes of the given length
func NewFingerprinter(length int) *Fingerprinter {
	if length <= 0 || length > sha256.Size*2 {
		length = 8
	}
	return &Fingerprinter{length: length}
}

// Fingerprint returns the hex SHA-256 prefix of value, or "" for empty input
func (f *Fingerprinter) Fingerprint(value string) string {
	if value == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", sum)[:f.length]
}

var globalFingerprinter = NewFingerprinter(8)

// Fingerprint is a convenience function that uses the global fingerprinter
func Fingerprint(value string) string {
	return globalFingerprinter.Fingerprint(value)
}
