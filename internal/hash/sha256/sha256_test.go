package sha256

import "testing"

func TestHash(t *testing.T) {
	h := New()
	// Well-known digest of the empty string.
	if got := h.Hash(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("empty digest mismatch: %s", got)
	}
	a := h.Hash([]byte("hello"))
	b := h.Hash([]byte("hello"))
	if a != b {
		t.Fatalf("digest is not deterministic: %s vs %s", a, b)
	}
	if a == h.Hash([]byte("world")) {
		t.Fatalf("distinct inputs produced identical digests")
	}
}
