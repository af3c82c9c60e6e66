package helpers

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("Secr3t!")
	require.NoError(t, err)

	assert.True(t, h.Compare(hash, "Secr3t!"))
	assert.False(t, h.Compare(hash, "secr3t!"))
	assert.False(t, h.Compare("", ""))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}

func TestGenOTPCode(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestKeyTwoFactorCode(t *testing.T) {
	assert.Equal(t, "identity:2fa:7:phone_code", KeyTwoFactorCode(7, "Phone Code"))
	assert.Equal(t, "identity:2fa:7:email_code", KeyTwoFactorCode(7, " Email Code "))
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "identity", "production")

	LogError(logger, "commit failed", errors.New("boom"), logrus.Fields{"user_id": 3})
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"user_id":3`)

	// nil loggers are ignored
	LogInfo(nil, "x", nil)
	LogWarn(nil, "x", nil)
	LogError(nil, "x", nil, nil)
}
