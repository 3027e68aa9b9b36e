package pricegrid

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the HTTP status.
const (
	TextCodeValidation            = "VALIDATION_ERROR"
	TextCodeDuplicateKey          = "DUPLICATE_KEY"
	TextCodeCapacityExceeded      = "CAPACITY_EXCEEDED"
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid          = "TOKEN_INVALID"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenInvalidOrExpired = "TOKEN_INVALID_OR_EXPIRED"
	TextCodeAlreadyVerified       = "ALREADY_VERIFIED"
	TextCodeEmailNotVerified      = "EMAIL_NOT_VERIFIED"
	TextCodeNotFound              = "NOT_FOUND"
)

// ErrInvalidCredentials is deliberately vague: the same error covers an
// unknown email and a wrong password so login cannot be used to enumerate
// accounts.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotVerified gates every protected operation and login until the
// admin confirms their email.
var ErrEmailNotVerified = goerrors.New("verify your email first", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrTokenExpired is returned for any structurally valid token past its exp.
var ErrTokenExpired = goerrors.New("token failed or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, garbage input, and any token whose
// purpose claim does not match the operation presenting it.
var ErrTokenMalformed = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrResetTokenInvalidOrExpired is the stored-pair failure: the presented
// reset token no longer matches the admin record, or the stored expiry has
// passed. Distinct from ErrTokenMalformed so a consumed-but-cryptographically
// fresh token reports the right condition.
var ErrResetTokenInvalidOrExpired = goerrors.New("reset token is invalid or has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalidOrExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrAdminNotFound is returned when a verified token references an admin
// record that no longer exists.
var ErrAdminNotFound = goerrors.New("not authorized as an admin", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrAlreadyVerified rejects a second use of a verification token.
var ErrAlreadyVerified = goerrors.New("email is already verified", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeConflict)

// ErrCapacityExceeded rejects registration once MaxAdminAccounts exist.
var ErrCapacityExceeded = goerrors.New("maximum number of admin accounts reached", goerrors.CategoryConflict).
	WithTextCode(TextCodeCapacityExceeded).
	WithCode(goerrors.CodeConflict)

// ErrDuplicateKey rejects registration with a taken email or username.
var ErrDuplicateKey = goerrors.New("email or username already in use", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateKey).
	WithCode(goerrors.CodeConflict)

// ErrNoEmptyPassword guards the hashing helpers.
var ErrNoEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrNoToken is the middleware failure for a request carrying neither a
// session cookie nor a bearer header.
var ErrNoToken = goerrors.New("no token provided", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens, including errors coming
// straight from the JWT library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isDuplicateKeyError detects the store's unique-constraint rejection. The
// store's verdict is authoritative for races between concurrent inserts, so
// this check runs after the insert, not instead of it.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}
