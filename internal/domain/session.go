package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GameSessionLease is the account-held record granting one game node
// exclusive ownership of a live session until ExpiresAt. Expiry is lazy: a
// stale lease is only observed by the next conditional check.
type GameSessionLease struct {
	SessionID uuid.UUID `json:"session_id"`
	ServerID  uuid.UUID `json:"server_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the lease still excludes other nodes at the given
// instant.
func (l *GameSessionLease) Live(now time.Time) bool {
	return l != nil && l.ExpiresAt.After(now)
}

// Account is the slice of the external account document this tier touches:
// display name plus the optional game session lease.
type Account struct {
	ID       uuid.UUID         `json:"id"`
	Username string            `json:"username"`
	Lease    *GameSessionLease `json:"lease,omitempty"`
}

// SessionTicket is the single-use record created by the login flow and
// consumed (deleted) by Session.Validate.
type SessionTicket struct {
	SessionID uuid.UUID `json:"session_id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the ticket was already stale when consumed.
func (t *SessionTicket) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Session validation outcome codes. Precondition race losses are ordinary
// results, not errors.
type SessionValidateCode int32

const (
	SessionValidateSuccess SessionValidateCode = iota
	SessionValidateInvalidSession
	SessionValidateAccountInUse
)

// SessionRenewCode reports whether a renew found a live matching lease.
type SessionRenewCode int32

const (
	SessionRenewSuccess SessionRenewCode = iota
	SessionRenewFailed
)

// NormalizeName lowercases a display name for uniqueness comparison.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}
