// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateConfirmationCode produces a short code suitable for pasting from
// an email. Entropy comes from crypto/rand; base32 keeps the alphabet
// unambiguous.
func GenerateConfirmationCode(length int) (string, error) {
	if length <= 0 {
		length = 20
	}

	bytes := make([]byte, (length*5+7)/8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}

	code := base32.StdEncoding.WithPadding(base32.NoPadding).
		EncodeToString(bytes)
	if len(code) > length {
		code = code[:length]
	}

	return code, nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}
