package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// passwordSalt is a single application-wide salt. Stored hashes were produced
// with it, so it must not change; there is no per-user salt.
const passwordSalt = "skanerxe_salt_2024"

// HashPassword computes the one-way digest stored in the users document
func HashPassword(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext + passwordSalt))
	return hex.EncodeToString(sum[:])
}
