package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// passwordDigest reduces a password of any length to 64 hex bytes.
// bcrypt silently truncates input past 72 bytes; hashing first keeps
// the whole password significant.
func passwordDigest(password string) []byte {
	digest := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(digest[:]))
}

// HashPassword returns the bcrypt hash of SHA256(password).
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(passwordDigest(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether password matches the stored hash.
// A malformed hash reads as a mismatch, never an error.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordDigest(password)) == nil
}
