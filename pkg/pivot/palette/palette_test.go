package palette

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		category string
		want     string
		wantErr  bool
	}{
		{"event", "#1f77b4", false},
		{"ip", "#ff7f0e", false},
		{"mac", "#aec7e8", false},
		{"spaceship", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, err := Lookup(tt.category)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.category, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.category, got, tt.want)
			}
			var lookupErr *PaletteLookupError
			if tt.wantErr && !errors.As(err, &lookupErr) {
				t.Errorf("expected *PaletteLookupError, got %T", err)
			}
		})
	}
}

func TestLookupIsDeterministic(t *testing.T) {
	for _, c := range Categories() {
		a, _ := Lookup(c)
		b, _ := Lookup(c)
		if a != b {
			t.Errorf("category %q changed color: %s vs %s", c, a, b)
		}
	}
}

func TestHexPadsAndMasks(t *testing.T) {
	if got := Hex(0xff); got != "#0000ff" {
		t.Errorf("Hex(0xff) = %s", got)
	}
	if got := Hex(0x1abcdef0); got != "#bcdef0" {
		t.Errorf("Hex masked = %s", got)
	}
}
