package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = bcrypt.DefaultCost

func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash host pin: %w", err)
	}
	return string(bytes), nil
}

func CheckPINHash(pin, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

// RandomSecret returns n random bytes, base64 encoded. Used as a signing key
// when none is configured.
func RandomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
