package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSecureOTP generates a cryptographically secure 6-digit OTP
func GenerateSecureOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	// Format with leading zeros so the code is always 6 digits
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GeneratePNR generates the user-facing booking reference, e.g. "RW-3F9A2C1B"
func GeneratePNR() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RW-" + strings.ToUpper(raw[:8])
}

// GenerateEntityID generates a prefixed unique ID for drivers, passengers
// and schedules ("DR...", "PS...", "SC...")
func GenerateEntityID(prefix string) string {
	return fmt.Sprintf("%s%d%03d", prefix, time.Now().Unix(), time.Now().Nanosecond()%1000)
}
