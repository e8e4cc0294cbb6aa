package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest of plaintext. The hash string
// is self-describing (algorithm and cost embedded), so cost can be raised
// later without invalidating stored hashes.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash.
// A malformed hash simply fails the check; it never panics or leaks why.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
