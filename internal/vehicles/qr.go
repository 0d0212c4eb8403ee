package vehicles

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	qrPrefix       = "VEH"
	qrDigits       = 4
	qrSuffixLength = 8
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// qrCodePattern matches codes produced by GenerateQRCode.
var qrCodePattern = regexp.MustCompile(`^VEH-\d{4}-[0-9a-z]{8}$`)

// GenerateQRCode produces a vehicle label of the form VEH-1234-a1b2c3d4.
// Uniqueness is enforced at the database, not here; collisions surface as
// conflicts and the caller retries.
func GenerateQRCode() (string, error) {
	digits, err := randomDigits(qrDigits)
	if err != nil {
		return "", err
	}
	suffix, err := randomBase36(qrSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", qrPrefix, digits, suffix), nil
}

// ValidQRCode reports whether the value matches the generated label shape.
func ValidQRCode(value string) bool {
	return qrCodePattern.MatchString(value)
}

func randomDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate qr digits: %w", err)
		}
		sb.WriteByte(byte('0' + v.Int64()))
	}
	return sb.String(), nil
}

func randomBase36(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			return "", fmt.Errorf("generate qr suffix: %w", err)
		}
		sb.WriteByte(base36Alphabet[v.Int64()])
	}
	return sb.String(), nil
}
