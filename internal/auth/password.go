package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 32
	iterations = 100_000
	keyLength  = 32
)

// HashPassword derives a key from the plaintext with PBKDF2-HMAC-SHA256 and a
// random salt, returning "<salt_hex>:<key_hex>".
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(plaintext), salt, iterations, keyLength, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword re-derives the key with the stored salt and compares in
// constant time. Malformed records fail closed.
func VerifyPassword(plaintext, record string) bool {
	saltHex, keyHex, ok := strings.Cut(record, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(keyHex)
	if err != nil || len(stored) == 0 {
		return false
	}
	derived := pbkdf2.Key([]byte(plaintext), salt, iterations, len(stored), sha256.New)
	return subtle.ConstantTimeCompare(derived, stored) == 1
}
