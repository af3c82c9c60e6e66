package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// KeyTwoFactorCode is the cache key for a pending two-factor code of a user
// issued through provider ("Phone Code", "Email Code").
func KeyTwoFactorCode(userID int64, provider string) string {
	p := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(provider), " ", "_"))
	return "identity:2fa:" + strconv.FormatInt(userID, 10) + ":" + p
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b)
	return fmt.Sprintf("%06d", n%1000000), nil
}
