package pricegrid

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	AdminID         uuid.UUID `json:"-"`
	CurrentPassword string    `json:"current_password"`
	NewPassword     string    `json:"new_password"`
	OnResponse      func(resp *ChangePasswordResponse)
}

func (p ChangePasswordMessage) Type() string { return "admin.change_password" }

type ChangePasswordResponse struct {
	// SessionToken is the rotated session issued after a successful change.
	SessionToken string
	Success      bool
}

type ChangePasswordHandler struct {
	repo   RepositoryManager
	tokens TokenService
	config Config
}

func NewChangePasswordHandler(repo RepositoryManager, tokens TokenService, cfg Config) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo, tokens: tokens, config: cfg}
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	resp := &ChangePasswordResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		admin, err := h.repo.Admins().GetByID(ctx, event.AdminID)
		if err != nil {
			return ErrAdminNotFound
		}

		if err := ComparePasswordAndHash(event.CurrentPassword, admin.PasswordHash); err != nil {
			return ErrInvalidCredentials
		}

		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid new password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
		}

		return h.repo.Admins().UpdatePasswordHashTx(ctx, tx, event.AdminID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to change password")
	}

	// rotate the session so the client does not keep working off the token
	// minted against the old credential
	token, err := h.tokens.GenerateWithTTL(event.AdminID.String(), PurposeSession, h.config.GetSessionDuration())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate session token")
	}

	resp.SessionToken = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
