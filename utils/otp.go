package utils

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// GenerateOTPCode returns a zero-padded six digit verification code.
func GenerateOTPCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
