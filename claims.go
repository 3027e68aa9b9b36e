package pricegrid

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenPurpose tags a token with the single flow it is valid for. Validation
// asserts the purpose, so a verification link can never open a session and a
// session cookie can never reset a password.
type TokenPurpose string

const (
	PurposeSession      TokenPurpose = "session"
	PurposeVerification TokenPurpose = "verify"
	PurposeReset        TokenPurpose = "reset"
)

// Default lifetimes per purpose.
const (
	SessionTTL      = 14 * 24 * time.Hour
	VerificationTTL = 24 * time.Hour
	ResetTTL        = 1 * time.Hour
)

// TTL returns the default lifetime for the purpose.
func (p TokenPurpose) TTL() time.Duration {
	switch p {
	case PurposeVerification:
		return VerificationTTL
	case PurposeReset:
		return ResetTTL
	default:
		return SessionTTL
	}
}

// TokenClaims is the payload carried by every token the service mints.
type TokenClaims struct {
	jwt.RegisteredClaims
	Purpose TokenPurpose `json:"purpose"`
}

// NewTokenClaims builds claims for the given admin and purpose, with expiry
// ttl from now.
func NewTokenClaims(adminID string, purpose TokenPurpose, ttl time.Duration) TokenClaims {
	now := time.Now()
	return TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	}
}
