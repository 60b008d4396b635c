package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// AccessState is the single source of truth for whether a user may act
type AccessState string

const (
	AccessActive          AccessState = "active"
	AccessBannedUntil     AccessState = "banned_until"
	AccessBannedPermanent AccessState = "banned_permanent"
)

// AccessStatus is computed from the persisted ban fields at a given instant
type AccessStatus struct {
	State  AccessState `json:"state"`
	Until  *time.Time  `json:"until,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// ComputeAccess derives access lazily: an expired ban reads as active without being cleared.
func ComputeAccess(isBanned bool, expires null.Time, reason string, now time.Time) AccessStatus {
	if !isBanned {
		return AccessStatus{State: AccessActive}
	}
	if !expires.Valid {
		return AccessStatus{State: AccessBannedPermanent, Reason: reason}
	}
	if !now.Before(expires.Time) {
		return AccessStatus{State: AccessActive}
	}
	until := expires.Time
	return AccessStatus{State: AccessBannedUntil, Until: &until, Reason: reason}
}

func (a AccessStatus) IsBanned() bool {
	return a.State == AccessBannedUntil || a.State == AccessBannedPermanent
}

// LegacyBlocked is the value written to the legacy is_blocked column
func (a AccessStatus) LegacyBlocked() bool {
	return a.IsBanned()
}
