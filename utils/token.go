package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomToken returns a 32-byte random token as hex, used for email
// verification and password reset links.
func NewRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
