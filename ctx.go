package pricegrid

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var adminCtxKey = &contextKey{"admin"}

type contextKey struct {
	name string
}

// AdminLocalsKey is the fiber Locals key under which the session middleware
// stores the authenticated, sanitized admin.
const AdminLocalsKey = "admin"

// WithAdmin sets the Admin in the given context
func WithAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, adminCtxKey, admin)
}

// AdminFromContext finds the admin in the context.
func AdminFromContext(ctx context.Context) (*Admin, bool) {
	raw, ok := ctx.Value(adminCtxKey).(*Admin)
	return raw, ok
}

// AdminFromLocals extracts the admin stored by the session middleware.
func AdminFromLocals(c *fiber.Ctx) (*Admin, bool) {
	raw := c.Locals(AdminLocalsKey)
	if raw == nil {
		return nil, false
	}
	admin, ok := raw.(*Admin)
	return admin, ok
}
