package idgen

import (
	"testing"
	"time"
)

func TestContentHashIsDeterministic(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6*1_000_000, time.UTC)

	a := ContentHash(8, ts, 0, "decision", "use sqlite")
	b := ContentHash(8, ts, 0, "decision", "use sqlite")
	if a != b {
		t.Fatalf("ContentHash not deterministic: %s != %s", a, b)
	}
	if len(a) != 8 {
		t.Fatalf("expected length 8, got %d (%s)", len(a), a)
	}
}

func TestContentHashVariesWithNonce(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := ContentHash(6, ts, 0, "x")
	b := ContentHash(6, ts, 1, "x")
	if a == b {
		t.Fatalf("expected nonce to change the digest, both were %s", a)
	}
}

func TestPrefixedHashCrossTypeSafety(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	decision := PrefixedHash("decision", 8, ts, 0, "abc12345")
	constraint := PrefixedHash("constraint", 8, ts, 0, "abc12345")
	if decision == constraint {
		t.Fatalf("expected distinct prefixed ids, got %s for both", decision)
	}
}
