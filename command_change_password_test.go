package pricegrid_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricegrid/pricegrid"
)

func TestChangePasswordRotatesSession(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")

	adminID := uuid.New()
	hash, err := pricegrid.HashPassword("password1")
	require.NoError(t, err)

	record := &pricegrid.Admin{ID: adminID, Email: "jane@x.com", PasswordHash: hash, Verified: true}

	admins.On("GetByID", mock.Anything, adminID).Return(record, nil).Once()
	admins.On("UpdatePasswordHashTx", mock.Anything, mock.Anything, adminID, mock.MatchedBy(func(h string) bool {
		return pricegrid.ComparePasswordAndHash("password2", h) == nil
	})).Return(nil).Once()

	var res *pricegrid.ChangePasswordResponse
	handler := pricegrid.NewChangePasswordHandler(repo, tokens, testConfig())
	err = handler.Execute(context.Background(), pricegrid.ChangePasswordMessage{
		AdminID:         adminID,
		CurrentPassword: "password1",
		NewPassword:     "password2",
		OnResponse: func(resp *pricegrid.ChangePasswordResponse) {
			res = resp
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	// the rotated token is a session token for the same admin
	claims, err := tokens.Validate(res.SessionToken, pricegrid.PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, adminID.String(), claims.Subject)

	admins.AssertExpectations(t)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	admins := &MockAdmins{}
	repo := &stubRepo{admins: admins}
	tokens := pricegrid.NewTokenService("test-signing-secret")

	adminID := uuid.New()
	hash, err := pricegrid.HashPassword("password1")
	require.NoError(t, err)

	record := &pricegrid.Admin{ID: adminID, PasswordHash: hash, Verified: true}

	admins.On("GetByID", mock.Anything, adminID).Return(record, nil).Once()

	handler := pricegrid.NewChangePasswordHandler(repo, tokens, testConfig())
	err = handler.Execute(context.Background(), pricegrid.ChangePasswordMessage{
		AdminID:         adminID,
		CurrentPassword: "wrong-password",
		NewPassword:     "password2",
	})

	assert.ErrorIs(t, err, pricegrid.ErrInvalidCredentials)
	admins.AssertNotCalled(t, "UpdatePasswordHashTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
