package idgen

import (
	"strings"
	"testing"
)

func TestNanoIDLengthAndAlphabet(t *testing.T) {
	// WHAT: NanoID produces IDs of the requested length from its alphabet.
	// WHY: scratch file names and result ids embed these directly.
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("length: got %d, want 12", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r) {
			t.Fatalf("unexpected rune %q in %q", r, id)
		}
	}
}

func TestTimestampedShape(t *testing.T) {
	// WHAT: Timestamped ids are "<millis>-<suffix>".
	// WHY: the retrieval tool surfaces these to the agent verbatim.
	id := Timestamped(NanoID(8))()
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		t.Fatalf("shape: got %q", id)
	}
	if len(parts[1]) != 8 {
		t.Fatalf("suffix length: got %d", len(parts[1]))
	}
}

func TestDefaultUniqueAcrossCalls(t *testing.T) {
	// WHAT: repeated Default calls do not collide in practice.
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("collision: %q", id)
		}
		seen[id] = true
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("res_", NanoID(4))()
	if !strings.HasPrefix(id, "res_") {
		t.Fatalf("prefix missing: %q", id)
	}
}
