package pricegrid

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// APIResponse is the envelope every endpoint returns. Payload-bearing
// endpoints add a Data field; failures carry only success and message.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// HTTPErrorHandler converts rich errors into the fixed status/message
// contract. Anything unclassified reports as a 500 without leaking internals.
func HTTPErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		if err == nil {
			return nil
		}

		if verr, ok := err.(validation.Errors); ok {
			return c.Status(fiber.StatusBadRequest).JSON(APIResponse{
				Success: false,
				Message: verr.Error(),
			})
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := int(richErr.Code)
			if status == 0 {
				status = statusFromCategory(richErr.Category)
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error("request failed", "error", err)
				return c.Status(status).JSON(APIResponse{
					Success: false,
					Message: "internal server error",
				})
			}
			return c.Status(status).JSON(APIResponse{
				Success: false,
				Message: richErr.Message,
			})
		}

		if ferr, ok := err.(*fiber.Error); ok {
			return c.Status(ferr.Code).JSON(APIResponse{
				Success: false,
				Message: ferr.Message,
			})
		}

		logger.Error("unhandled error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(APIResponse{
			Success: false,
			Message: "internal server error",
		})
	}
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// SetSessionCookie writes the httpOnly session cookie.
func SetSessionCookie(c *fiber.Ctx, cfg Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.GetCookieName(),
		Value:    token,
		Expires:  time.Now().Add(cfg.GetSessionDuration()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ClearSessionCookie expires the session cookie. Safe to call when no cookie
// is present, which keeps logout idempotent.
func ClearSessionCookie(c *fiber.Ctx, cfg Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.GetCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
