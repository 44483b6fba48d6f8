package hasher_test

import (
	"strings"
	"testing"

	"github.com/pulsekit/pulse/adapters/hasher"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_RoundTrip(t *testing.T) {
	h := hasher.NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("dashboard-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(string(hash), "$2") {
		t.Errorf("hash %q is not in bcrypt format", hash)
	}

	if !h.Compare(hash, "dashboard-password") {
		t.Error("correct password should compare true")
	}
	if h.Compare(hash, "Dashboard-password") {
		t.Error("wrong password should compare false")
	}
}

func TestBcrypt_SaltedHashes(t *testing.T) {
	h := hasher.NewBcrypt(bcrypt.MinCost)

	// Two users with the same password must not share a stored hash.
	a, _ := h.Hash("dashboard-password")
	b, _ := h.Hash("dashboard-password")

	if string(a) == string(b) {
		t.Error("repeated hashes of one password should differ")
	}
}

func TestBcrypt_OutOfRangeCostFallsBack(t *testing.T) {
	// Costs outside bcrypt's range fall back to the default instead of
	// failing every registration at runtime.
	for _, cost := range []int{-1, 0, 99} {
		h := hasher.NewBcrypt(cost)

		hash, err := h.Hash("dashboard-password")
		if err != nil {
			t.Fatalf("Hash with cost %d: %v", cost, err)
		}
		if !h.Compare(hash, "dashboard-password") {
			t.Errorf("cost %d: round trip failed", cost)
		}
	}
}

func TestBcrypt_Compare_Garbage(t *testing.T) {
	h := hasher.NewBcrypt(bcrypt.MinCost)

	if h.Compare([]byte("not-a-bcrypt-hash"), "dashboard-password") {
		t.Error("garbage hash should never compare true")
	}
	if h.Compare(nil, "dashboard-password") {
		t.Error("nil hash should never compare true")
	}
}

func TestFake_RoundTrip(t *testing.T) {
	h := hasher.Fake{}

	hash, err := h.Hash("dashboard-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !h.Compare(hash, "dashboard-password") {
		t.Error("fake hasher should accept its own output")
	}
	if h.Compare(hash, "other-password") {
		t.Error("fake hasher should reject a different password")
	}
}
