package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// SignHMACSHA512 returns the lowercase hex HMAC-SHA512 of payload, the form Paystack puts in x-paystack-signature
func SignHMACSHA512(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA512 reports whether signature matches payload under secret. An empty secret never verifies.
func VerifyHMACSHA512(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignHMACSHA512(secret, payload)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
