package pricegrid

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxAdminAccounts is the hard cap on admin records. Registration past the
// cap fails with ErrCapacityExceeded regardless of input validity.
var MaxAdminAccounts = 4

// Admin is the only actor type in the system.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name         string    `bun:"name,notnull" json:"name,omitempty"`
	Username     string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	// Verified starts false and flips true exactly once; there is no
	// un-verification path.
	Verified bool `bun:"is_verified,notnull,default:false" json:"is_verified"`

	// ResetToken and ResetTokenExpiresAt are set together when a password
	// reset is requested and cleared together when it is consumed or found
	// expired. The stored token is the single-use guarantee: clearing it
	// invalidates the reset link even before its cryptographic expiry.
	ResetToken          *string    `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiresAt *time.Time `bun:"reset_token_expires_at,nullzero" json:"-"`

	LoginAttempts  int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPendingReset reports whether a reset pair is currently stored.
func (a *Admin) HasPendingReset() bool {
	return a.ResetToken != nil && a.ResetTokenExpiresAt != nil
}

// ResetExpired reports whether the stored reset pair exists but is past its
// expiry at the given instant.
func (a *Admin) ResetExpired(now time.Time) bool {
	if !a.HasPendingReset() {
		return false
	}
	return now.After(*a.ResetTokenExpiresAt)
}

// Sanitized returns a copy safe to attach to a request context or serialize
// in a response: password hash, reset pair, and attempt counters zeroed.
func (a *Admin) Sanitized() *Admin {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	clone.ResetToken = nil
	clone.ResetTokenExpiresAt = nil
	clone.LoginAttempts = 0
	clone.LoginAttemptAt = nil
	return &clone
}

// NormalizeEmail is the canonical form used for storage and lookup: trimmed
// and lowercased. Two addresses differing only in case or whitespace are the
// same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func usernameFromEmail(email string) string {
	if strings.Contains(email, "@") {
		return strings.Split(email, "@")[0]
	}
	return email
}
