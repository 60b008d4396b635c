package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type AppealStatus string

const (
	AppealStatusOpen     AppealStatus = "open"
	AppealStatusResolved AppealStatus = "resolved"
)

// Appeal is a banned user's request for review
type Appeal struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"userId"`
	Message    string       `json:"message"`
	Status     AppealStatus `json:"status"`
	ResolvedAt null.Time    `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}
