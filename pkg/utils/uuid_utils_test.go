package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDv7(t *testing.T) {
	id := GenerateUUIDv7()
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestGenerateUUIDv7_FallbackToV4(t *testing.T) {
	orig := newUUIDv7
	t.Cleanup(func() { newUUIDv7 = orig })
	newUUIDv7 = func() (uuid.UUID, error) { return uuid.Nil, errors.New("clock") }

	assert.Equal(t, uuid.Version(4), GenerateUUIDv7().Version())
}

func TestNewPaymentReference(t *testing.T) {
	a := NewPaymentReference(OrderReferencePrefix)
	b := NewPaymentReference(OrderReferencePrefix)

	assert.True(t, strings.HasPrefix(a, "ORD-"))
	assert.Len(t, a, len("ORD-")+32)
	assert.NotEqual(t, a, b)
}
