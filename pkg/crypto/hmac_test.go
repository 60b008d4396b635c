package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignHMACSHA512_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	got := SignHMACSHA512("Jefe", []byte("what do ya want for nothing?"))
	assert.Equal(t, "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737", got)
}

func TestVerifyHMACSHA512(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"TOP_1"}}`)
	sig := SignHMACSHA512("sk_test", body)

	assert.True(t, VerifyHMACSHA512("sk_test", body, sig))
	assert.True(t, VerifyHMACSHA512("sk_test", body, "  "+sig+" "))
	assert.False(t, VerifyHMACSHA512("sk_other", body, sig))
	assert.False(t, VerifyHMACSHA512("sk_test", append(body, ' '), sig))
	assert.False(t, VerifyHMACSHA512("sk_test", body, ""))
	assert.False(t, VerifyHMACSHA512("", body, SignHMACSHA512("", body)))
}
