package pricegrid_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricegrid/pricegrid"
)

func TestLoginIssuesSessionToken(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")

	adminID := uuid.New()
	hash, err := pricegrid.HashPassword("password1")
	require.NoError(t, err)

	record := &pricegrid.Admin{
		ID:           adminID,
		Email:        "jane@x.com",
		PasswordHash: hash,
		Verified:     true,
	}

	admins.On("GetByEmail", mock.Anything, "jane@x.com").Return(record, nil).Once()
	admins.On("TrackSuccessfulLogin", mock.Anything, record).Return(nil).Once()

	auther := pricegrid.NewAuthenticator(repo, tokens, testConfig()).WithLogger(testLogger{})

	token, admin, err := auther.Login(context.Background(), "jane@x.com", "password1")
	require.NoError(t, err)
	require.NotNil(t, admin)

	assert.Empty(t, admin.PasswordHash)

	claims, err := tokens.Validate(token, pricegrid.PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, adminID.String(), claims.Subject)

	admins.AssertExpectations(t)
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")
	auther := pricegrid.NewAuthenticator(repo, tokens, testConfig()).WithLogger(testLogger{})

	hash, err := pricegrid.HashPassword("password1")
	require.NoError(t, err)
	record := &pricegrid.Admin{ID: uuid.New(), Email: "jane@x.com", PasswordHash: hash, Verified: true}

	admins.On("GetByEmail", mock.Anything, "ghost@x.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	admins.On("GetByEmail", mock.Anything, "jane@x.com").Return(record, nil).Once()
	admins.On("TrackAttemptedLogin", mock.Anything, record).Return(nil).Once()

	_, _, unknownErr := auther.Login(context.Background(), "ghost@x.com", "password1")
	_, _, wrongErr := auther.Login(context.Background(), "jane@x.com", "wrong-password")

	// same error either way
	assert.ErrorIs(t, unknownErr, pricegrid.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, pricegrid.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")
	auther := pricegrid.NewAuthenticator(repo, tokens, testConfig()).WithLogger(testLogger{})

	hash, err := pricegrid.HashPassword("password1")
	require.NoError(t, err)
	record := &pricegrid.Admin{ID: uuid.New(), Email: "jane@x.com", PasswordHash: hash, Verified: false}

	admins.On("GetByEmail", mock.Anything, "jane@x.com").Return(record, nil).Once()

	_, _, err = auther.Login(context.Background(), "jane@x.com", "password1")

	// correct credentials, unverified account: never InvalidCredentials
	assert.ErrorIs(t, err, pricegrid.ErrEmailNotVerified)
}

func TestAdminFromToken(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")
	auther := pricegrid.NewAuthenticator(repo, tokens, testConfig())

	adminID := uuid.New()
	record := &pricegrid.Admin{ID: adminID, Email: "jane@x.com", Verified: true}

	admins.On("GetByID", mock.Anything, adminID).Return(record, nil).Once()

	token, err := tokens.Generate(adminID.String(), pricegrid.PurposeSession)
	require.NoError(t, err)

	admin, err := auther.AdminFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, adminID, admin.ID)

	t.Run("verification token rejected", func(t *testing.T) {
		verify, err := tokens.Generate(adminID.String(), pricegrid.PurposeVerification)
		require.NoError(t, err)

		_, err = auther.AdminFromToken(context.Background(), verify)
		assert.ErrorIs(t, err, pricegrid.ErrTokenMalformed)
	})
}
