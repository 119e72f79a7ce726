package hasher

import "testing"

func TestBcryptRoundtrip(t *testing.T) {
	h := NewBcrypt(4) // minimum cost keeps the test fast

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if string(hash) == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !h.Compare(hash, "s3cret") {
		t.Error("Compare with correct password = false")
	}
	if h.Compare(hash, "wrong") {
		t.Error("Compare with wrong password = true")
	}
}

func TestBcryptInvalidCostFallsBack(t *testing.T) {
	h := NewBcrypt(99)
	if _, err := h.Hash("x"); err != nil {
		t.Fatalf("Hash with clamped cost: %v", err)
	}
}

func TestFake(t *testing.T) {
	h := Fake{}
	hash, _ := h.Hash("pw")
	if !h.Compare(hash, "pw") || h.Compare(hash, "other") {
		t.Error("fake hasher equality broken")
	}
}
