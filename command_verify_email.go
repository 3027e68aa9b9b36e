package pricegrid

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "admin.verify_email" }

type VerifyEmailResponse struct {
	Admin   *Admin
	Success bool
}

type VerifyEmailHandler struct {
	repo   RepositoryManager
	tokens TokenService
}

func NewVerifyEmailHandler(repo RepositoryManager, tokens TokenService) *VerifyEmailHandler {
	return &VerifyEmailHandler{repo: repo, tokens: tokens}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	resp := &VerifyEmailResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.tokens.Validate(event.Token, PurposeVerification)
	if err != nil {
		return err
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrTokenMalformed
	}

	admin := &Admin{}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		admin, err = h.repo.Admins().GetByID(ctx, adminID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("no admin account for that token", goerrors.CategoryNotFound).
					WithTextCode(TextCodeNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve admin for verification")
		}

		// the flag flips at most once; the conditional update reports a
		// second use of the same link
		flipped, err := h.repo.Admins().MarkVerifiedTx(ctx, tx, adminID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark admin as verified")
		}
		if !flipped {
			return ErrAlreadyVerified
		}

		admin.Verified = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify email")
	}

	resp.Admin = admin.Sanitized()
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
