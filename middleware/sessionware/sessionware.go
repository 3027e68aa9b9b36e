// Package sessionware gates protected routes behind a session token. The
// ladder is strict and terminal at every rung: no token, failed or expired
// token, missing admin, unverified admin, then authorized with the sanitized
// admin attached to the request.
package sessionware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pricegrid/pricegrid"
)

// TokenValidator mirrors the purpose-checked validation of the token service
// without dragging the full interface in.
type TokenValidator interface {
	Validate(token string, expect pricegrid.TokenPurpose) (*pricegrid.TokenClaims, error)
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool

	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler

	// TokenValidator is required.
	TokenValidator TokenValidator
	// Admins is required; the resolved record is loaded per request so a
	// deleted or still-unverified account fails even with a fresh token.
	Admins pricegrid.Admins

	// CookieName is checked first; Authorization: Bearer is the fallback.
	// Clients already depend on both read paths working.
	CookieName string
	AuthScheme string
	ContextKey string
}

func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := ExtractToken(c, cfg.CookieName, cfg.AuthScheme)
		if raw == "" {
			return cfg.ErrorHandler(c, pricegrid.ErrNoToken)
		}

		claims, err := cfg.TokenValidator.Validate(raw, pricegrid.PurposeSession)
		if err != nil {
			// expired and malformed collapse to one response on purpose
			return cfg.ErrorHandler(c, pricegrid.ErrTokenExpired)
		}

		admin, err := pricegrid.ResolveAdmin(c.Context(), cfg.Admins, claims.Subject)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, admin)
		c.SetUserContext(pricegrid.WithAdmin(c.UserContext(), admin))

		return cfg.SuccessHandler(c)
	}
}

// ExtractToken reads the session token from the cookie first, then from the
// Authorization header.
func ExtractToken(c *fiber.Ctx, cookieName, authScheme string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:])
	}

	return ""
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("SESSIONWARE: middleware configuration: TokenValidator is required.")
	}

	if cfg.Admins == nil {
		panic("SESSIONWARE: middleware configuration: Admins repository is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		// let the application error handler own the response shape
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return err
		}
	}

	if cfg.CookieName == "" {
		cfg.CookieName = pricegrid.DefaultCookieName
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = pricegrid.AdminLocalsKey
	}

	return cfg
}
