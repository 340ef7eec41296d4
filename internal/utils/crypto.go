// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

func GenerateRandomString(length int, charset string) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateSupportCode produces the 4-character code buyers quote when
// opening a support ticket. Codes are not required to be unique.
func GenerateSupportCode() (string, error) {
	return GenerateRandomString(4, "ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
}
