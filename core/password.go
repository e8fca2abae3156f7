package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

const defaultPasswordLength = 12

// GeneratePassword returns a random password drawn from a mixed-case
// alphanumeric and symbol charset. Lengths below one fall back to the default.
func GeneratePassword(length int) (string, error) {
	if length < 1 {
		length = defaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("core: generate password: %w", err)
		}
		out[i] = passwordCharset[idx.Int64()]
	}
	return string(out), nil
}
