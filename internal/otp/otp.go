// Package otp generates one-time verification codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a generated code.
const Length = 6

var max = big.NewInt(1000000)

// Generate returns a 6-digit numeric code drawn from crypto/rand.
// Leading zeros are preserved, so every code is exactly Length digits.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Length, n), nil
}
