package sessionware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricegrid/pricegrid"
	"github.com/pricegrid/pricegrid/middleware/sessionware"
)

// fakeAdmins serves a fixed set of records; only GetByID is exercised by the
// middleware ladder.
type fakeAdmins struct {
	pricegrid.Admins
	records map[uuid.UUID]*pricegrid.Admin
}

func (f *fakeAdmins) GetByID(_ context.Context, id uuid.UUID) (*pricegrid.Admin, error) {
	if admin, ok := f.records[id]; ok {
		return admin, nil
	}
	return nil, repository.NewRecordNotFound()
}

func newTestApp(t *testing.T, admins pricegrid.Admins, tokens sessionware.TokenValidator) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: pricegrid.HTTPErrorHandler(nil),
	})

	app.Get("/protected", sessionware.New(sessionware.Config{
		TokenValidator: tokens,
		Admins:         admins,
	}), func(c *fiber.Ctx) error {
		admin, ok := pricegrid.AdminFromLocals(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"success": true, "id": admin.ID.String()})
	})

	return app
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestSessionLadder(t *testing.T) {
	tokens := pricegrid.NewTokenService("test-signing-secret")

	verified := &pricegrid.Admin{ID: uuid.New(), Email: "jane@x.com", Verified: true}
	unverified := &pricegrid.Admin{ID: uuid.New(), Email: "new@x.com", Verified: false}

	admins := &fakeAdmins{records: map[uuid.UUID]*pricegrid.Admin{
		verified.ID:   verified,
		unverified.ID: unverified,
	}}

	app := newTestApp(t, admins, tokens)

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "no token provided", decodeBody(t, res)["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "token failed or expired", decodeBody(t, res)["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := tokens.GenerateWithTTL(verified.ID.String(), pricegrid.PurposeSession, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "token failed or expired", decodeBody(t, res)["message"])
	})

	t.Run("verification token rejected for session use", func(t *testing.T) {
		token, err := tokens.Generate(verified.ID.String(), pricegrid.PurposeVerification)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("admin missing", func(t *testing.T) {
		token, err := tokens.Generate(uuid.New().String(), pricegrid.PurposeSession)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "not authorized as an admin", decodeBody(t, res)["message"])
	})

	t.Run("unverified admin", func(t *testing.T) {
		token, err := tokens.Generate(unverified.ID.String(), pricegrid.PurposeSession)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, "verify your email first", decodeBody(t, res)["message"])
	})

	t.Run("verified admin via bearer header", func(t *testing.T) {
		token, err := tokens.Generate(verified.ID.String(), pricegrid.PurposeSession)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, verified.ID.String(), decodeBody(t, res)["id"])
	})

	t.Run("verified admin via cookie", func(t *testing.T) {
		token, err := tokens.Generate(verified.ID.String(), pricegrid.PurposeSession)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: pricegrid.DefaultCookieName, Value: token})
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, verified.ID.String(), decodeBody(t, res)["id"])
	})
}

func TestExtractTokenPrecedence(t *testing.T) {
	app := fiber.New()

	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = sessionware.ExtractToken(c, pricegrid.DefaultCookieName, "Bearer")
		return c.SendString("ok")
	})

	// cookie wins when both are present
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: pricegrid.DefaultCookieName, Value: "cookie-token"})
	req.Header.Set(fiber.HeaderAuthorization, "Bearer header-token")

	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", got)

	// bearer fallback when no cookie
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer header-token")

	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "header-token", got)
}
