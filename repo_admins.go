package pricegrid

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeResetTokenSQL atomically finalizes a password reset: the new hash is
// written and the reset pair cleared only if the stored token still matches
// and has not expired. Zero rows affected means the link was already used,
// replaced, or timed out.
var ConsumeResetTokenSQL = `UPDATE "admins" AS "adm"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_expires_at" = NULL
WHERE
	"adm"."id" = ?
AND "adm"."reset_token" = ?
AND "adm"."reset_token_expires_at" > ?;`

// MarkVerifiedSQL flips the verified flag only when it is currently false,
// so a second use of the same link reports zero rows.
var MarkVerifiedSQL = `UPDATE "admins" AS "adm"
SET
	"is_verified" = TRUE
WHERE
	"adm"."id" = ?
AND "adm"."is_verified" = FALSE;`

// Admins is the storage surface the auth workflows depend on. It is a
// domain interface rather than a generic repository so command handlers
// can be exercised against mocks.
type Admins interface {
	Create(ctx context.Context, admin *Admin) (*Admin, error)
	CreateTx(ctx context.Context, tx bun.IDB, admin *Admin) (*Admin, error)

	GetByEmail(ctx context.Context, email string) (*Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	Count(ctx context.Context) (int, error)

	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error)

	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordHashTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	TrackAttemptedLogin(ctx context.Context, admin *Admin) error
	TrackSuccessfulLogin(ctx context.Context, admin *Admin) error
}

type admins struct {
	repository.Repository[*Admin]
	db *bun.DB
}

var _ Admins = (*admins)(nil)

func NewAdminsRepository(db *bun.DB) Admins {
	repo := repository.NewRepository[*Admin](db, repository.ModelHandlers[*Admin]{
		NewRecord: func() *Admin { return &Admin{} },
		GetID: func(a *Admin) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Admin, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &admins{
		Repository: repo,
		db:         db,
	}
}

func (a *admins) Create(ctx context.Context, admin *Admin) (*Admin, error) {
	return a.CreateTx(ctx, a.db, admin)
}

func (a *admins) CreateTx(ctx context.Context, tx bun.IDB, admin *Admin) (*Admin, error) {
	prepareAdminDefaults(admin)
	record, err := a.Repository.CreateTx(ctx, tx, admin)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return record, nil
}

func (a *admins) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	record := &Admin{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}
	return record, nil
}

func (a *admins) GetByID(ctx context.Context, id uuid.UUID) (*Admin, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *admins) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*Admin)(nil)).Count(ctx)
}

func (a *admins) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.MarkVerifiedTx(ctx, a.db, id)
}

func (a *admins) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	res, err := tx.NewRaw(MarkVerifiedSQL, id.String()).Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (a *admins) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return a.SetResetTokenTx(ctx, a.db, id, token, expiresAt)
}

func (a *admins) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiresAt time.Time) error {
	// a new request replaces any pending pair, invalidating the older link
	_, err := tx.NewUpdate().
		Model((*Admin)(nil)).
		Set("reset_token = ?", token).
		Set("reset_token_expires_at = ?", expiresAt).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	return err
}

func (a *admins) ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error {
	return a.ConsumeResetTokenTx(ctx, a.db, id, token, passwordHash)
}

func (a *admins) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error {
	res, err := tx.NewRaw(ConsumeResetTokenSQL, passwordHash, id.String(), token, time.Now()).Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResetTokenInvalidOrExpired
	}
	return nil
}

func (a *admins) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("reset_token = NULL").
		Set("reset_token_expires_at = NULL").
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	return err
}

func (a *admins) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.UpdatePasswordHashTx(ctx, a.db, id, passwordHash)
}

func (a *admins) UpdatePasswordHashTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	_, err := tx.NewUpdate().
		Model((*Admin)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	return err
}

func (a *admins) TrackSuccessfulLogin(ctx context.Context, admin *Admin) error {
	// NOTE: Updating using the ORM fails to reset login_attempt_at and
	// login_attempts, so go raw here.
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "admins" AS "adm"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("adm".id = ?);
	`, loggedInAt, admin.ID).Exec(ctx)

	return err
}

func (a *admins) TrackAttemptedLogin(ctx context.Context, admin *Admin) error {
	record := &Admin{}
	record.ID = admin.ID
	record.LoginAttempts = admin.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.Update(ctx, record, repository.UpdateByID(admin.ID.String()))

	return err
}

func prepareAdminDefaults(record *Admin) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Username == "" {
		record.Username = usernameFromEmail(record.Email)
	}

	if record.ID == uuid.Nil {
		// deterministic IDs derived from the email keep re-registration
		// attempts from minting a second identity
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
