package pricegrid

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService mints and validates purpose-tagged tokens. A single signing
// secret backs all three purposes; the purpose claim keeps them from being
// interchangeable.
type TokenService interface {
	Generate(adminID string, purpose TokenPurpose) (string, error)
	GenerateWithTTL(adminID string, purpose TokenPurpose, ttl time.Duration) (string, error)
	Validate(token string, expect TokenPurpose) (*TokenClaims, error)
}

// TokenServiceImpl signs HS256 tokens with a shared secret.
type TokenServiceImpl struct {
	signingKey []byte
}

// NewTokenService panics on an empty signing key: running with no secret is
// a deployment error, not a recoverable condition.
func NewTokenService(signingKey string) *TokenServiceImpl {
	if signingKey == "" {
		panic("token service: signing key is required")
	}
	return &TokenServiceImpl{signingKey: []byte(signingKey)}
}

func (s *TokenServiceImpl) Generate(adminID string, purpose TokenPurpose) (string, error) {
	return s.GenerateWithTTL(adminID, purpose, purpose.TTL())
}

func (s *TokenServiceImpl) GenerateWithTTL(adminID string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	claims := NewTokenClaims(adminID, purpose, ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses and verifies the token, then asserts its purpose. Expired
// tokens map to ErrTokenExpired; anything else malformed, including a purpose
// mismatch, maps to ErrTokenMalformed.
func (s *TokenServiceImpl) Validate(tokenString string, expect TokenPurpose) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Purpose != expect {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
