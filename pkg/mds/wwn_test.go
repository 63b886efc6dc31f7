package mds

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestIsWWN(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"21:00:00:0e:1e:30:34:a5", true},
		{"21:00:00:0E:1E:30:34:A5", true},
		{"ff:ff:ff:ff:ff:ff:ff:ff", true},
		{"", false},
		{"host1", false},
		{"21:00:00:0e:1e:30:34", false},           // seven octets
		{"21:00:00:0e:1e:30:34:a5:00", false},     // nine octets
		{"21-00-00-0e-1e-30-34-a5", false},        // wrong separator
		{"2g:00:00:0e:1e:30:34:a5", false},        // non-hex digit
		{"21:00:00:0e:1e:30:34:a5 ", false},       // trailing junk
		{"x21:00:00:0e:1e:30:34:a5", false},       // leading junk
		{"210:00:00:0e:1e:30:34:a5", false},       // oversized octet
	}
	for _, tt := range tests {
		if got := IsWWN(tt.in); got != tt.want {
			t.Errorf("IsWWN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsWWNGenerated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		octets := rapid.SliceOfN(rapid.StringMatching(`[0-9a-fA-F]{2}`), 8, 8).Draw(t, "octets")
		wwn := strings.Join(octets, ":")
		if !IsWWN(wwn) {
			t.Fatalf("IsWWN(%q) = false for well-formed wwn", wwn)
		}
	})
}

func TestIsWWNRejectsAliasNames(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Device-alias names never contain colons, so they must always
		// classify as alias members rather than pwwns.
		name := rapid.StringMatching(`[a-zA-Z_][a-zA-Z0-9_-]{0,63}`).Draw(t, "name")
		if IsWWN(name) {
			t.Fatalf("IsWWN(%q) = true for alias-shaped name", name)
		}
	})
}
