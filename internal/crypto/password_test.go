package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestHashTokenStable(t *testing.T) {
	first := HashToken("token-a")
	second := HashToken("token-a")
	if first != second {
		t.Fatalf("expected stable hash")
	}
	if HashToken("token-b") == first {
		t.Fatalf("expected distinct hashes for distinct tokens")
	}
}
