package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	// minimal cost keeps the test fast
	hash, err := HashPassword("secret1", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash must never equal the plaintext")
	}

	if !CheckPassword("secret1", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must compare as false")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("secret1", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("secret1", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}
