package pricegrid

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ResolveAdmin walks a validated token subject to a live, verified admin:
// unknown subject fails as unauthorized, an unverified account is forbidden,
// and the returned record is sanitized for request-context use.
func ResolveAdmin(ctx context.Context, admins Admins, subject string) (*Admin, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	admin, err := admins.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAdminNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve admin from session")
	}

	if !admin.Verified {
		return nil, ErrEmailNotVerified
	}

	return admin.Sanitized(), nil
}
