package utils

import "testing"

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("secret-value")
	b := Fingerprint("secret-value")

	if a != b {
		t.Errorf("Expected stable fingerprint, got %s and %s", a, b)
	}
	if len(a) != 8 {
		t.Errorf("Expected 8 chars, got %d", len(a))
	}
	if a == Fingerprint("other-value") {
		t.Error("Expected different inputs to produce different fingerprints")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if got := Fingerprint(""); got != "" {
		t.Errorf("Expected empty fingerprint for empty input, got %q", got)
	}
}

func TestNewFingerprinter_LengthBounds(t *testing.T) {
	tests := []struct {
		length   int
		expected int
	}{
		{0, 8},
		{-3, 8},
		{12, 12},
		{100, 8},
	}

	for _, test := range tests {
		got := NewFingerprinter(test.length).Fingerprint("x")
		if len(got) != test.expected {
			t.Errorf("For length %d, expected %d chars, got %d", test.length, test.expected, len(got))
		}
	}
}
