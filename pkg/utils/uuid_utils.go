package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Gateway reference prefixes
const (
	OrderReferencePrefix  = "ORD"
	TopUpReferencePrefix  = "TOP"
	PayoutReferencePrefix = "PAY"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 generates a new UUID v7. Ids sort by creation time.
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewPaymentReference returns a unique gateway reference such as ORD-0190b1c2e3f4...
func NewPaymentReference(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(GenerateUUIDv7().String(), "-", "")
}
