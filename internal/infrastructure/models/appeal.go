package models

import (
	"time"

	"github.com/google/uuid"
)

type Appeal struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Message    string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'open';index"`
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
