package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenAlphabet is the URL-safe nanoid alphabet, so tokens embed in links without escaping
	TokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"

	digits = "0123456789"
)

// GenerateToken returns a cryptographically random nanoid of length characters
// drawn from TokenAlphabet
func GenerateToken(length int) (string, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return "", fmt.Errorf("invalid token length %d: %w", length, err)
	}
	return gen(), nil
}

// GenerateNumericCode returns a random code made only of digits, e.g. for sign-in codes
func GenerateNumericCode(length int) (string, error) {
	gen, err := nanoid.CustomASCII(digits, length)
	if err != nil {
		return "", fmt.Errorf("invalid code length %d: %w", length, err)
	}
	return gen(), nil
}

// HashSecret hashes a short-lived secret with bcrypt at the given cost.
// A cost below bcrypt.MinCost falls back to bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("HashSecret error: %w", err)
	}

	return string(hashed), nil
}

// CheckSecretHash reports whether secret matches a hash produced by HashSecret
func CheckSecretHash(secret string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func sha256Key(passphrase string) []byte {
	hash := sha256.Sum256([]byte(passphrase))
	return hash[:]
}

// EncryptString seals str with AES-GCM under a key derived from passphrase
// and returns nonce+ciphertext as hex
func EncryptString(str string, passphrase string) (string, error) {
	block, err := aes.NewCipher(sha256Key(passphrase))
	if err != nil {
		return "", fmt.Errorf("EncryptString cipher error: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("EncryptString error: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("EncryptString reader error: %w", err)
	}

	return hex.EncodeToString(gcm.Seal(nonce, nonce, []byte(str), nil)), nil
}

// DecryptFromHexString reverses EncryptString
func DecryptFromHexString(str string, passphrase string) (string, error) {
	if str == "" {
		return "", fmt.Errorf("DecryptFromHexString empty string")
	}

	data, err := hex.DecodeString(str)
	if err != nil {
		return "", fmt.Errorf("DecryptFromHexString decode error: %w", err)
	}

	block, err := aes.NewCipher(sha256Key(passphrase))
	if err != nil {
		return "", fmt.Errorf("DecryptFromHexString cipher error: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("DecryptFromHexString gcm error: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("DecryptFromHexString ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("DecryptFromHexString open error: %w", err)
	}

	return string(plaintext), nil
}
