package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives an irreversible salted hash from a plaintext
// password. cost is the bcrypt work factor (10 in the default config).
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
// Malformed hashes compare as false, never panic.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
