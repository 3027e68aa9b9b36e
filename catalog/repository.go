package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound covers every public read that resolves to nothing usable:
// absent rows, inactive plans, expired or exhausted codes.
var ErrNotFound = goerrors.New("resource not found", goerrors.CategoryNotFound).
	WithTextCode("NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// Repository is the storage surface for catalog resources. Writes are
// upserts on the natural key, so the same call serves create and update.
type Repository interface {
	UpsertPlan(ctx context.Context, plan *Plan) (*Plan, error)
	GetPlan(ctx context.Context, kind, slug string) (*Plan, error)
	ListPlans(ctx context.Context, kind string) ([]*Plan, error)

	UpsertExchangeRate(ctx context.Context, rate *ExchangeRate) (*ExchangeRate, error)
	ListExchangeRates(ctx context.Context) ([]*ExchangeRate, error)

	UpsertReferralCode(ctx context.Context, code *ReferralCode) (*ReferralCode, error)
	GetReferralCode(ctx context.Context, code string) (*ReferralCode, error)
}

type repo struct {
	db *bun.DB
}

var _ Repository = (*repo)(nil)

func NewRepository(db *bun.DB) Repository {
	return &repo{db: db}
}

func (r *repo) UpsertPlan(ctx context.Context, plan *Plan) (*Plan, error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	_, err := r.db.NewInsert().
		Model(plan).
		On("CONFLICT (kind, slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("price_cents = EXCLUDED.price_cents").
		Set("currency = EXCLUDED.currency").
		Set("period = EXCLUDED.period").
		Set("features = EXCLUDED.features").
		Set("is_active = EXCLUDED.is_active").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert plan")
	}

	return r.getPlanAny(ctx, plan.Kind, plan.Slug)
}

// GetPlan is the storefront read: inactive plans report as absent.
func (r *repo) GetPlan(ctx context.Context, kind, slug string) (*Plan, error) {
	plan, err := r.getPlanAny(ctx, kind, slug)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrNotFound
	}
	return plan, nil
}

func (r *repo) getPlanAny(ctx context.Context, kind, slug string) (*Plan, error) {
	plan := &Plan{}
	err := r.db.NewSelect().
		Model(plan).
		Where("?TableAlias.kind = ?", kind).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve plan")
	}
	return plan, nil
}

func (r *repo) ListPlans(ctx context.Context, kind string) ([]*Plan, error) {
	var plans []*Plan
	q := r.db.NewSelect().
		Model(&plans).
		Where("?TableAlias.is_active = TRUE").
		Order("price_cents ASC")

	if kind != "" {
		q = q.Where("?TableAlias.kind = ?", kind)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list plans")
	}

	return plans, nil
}

func (r *repo) UpsertExchangeRate(ctx context.Context, rate *ExchangeRate) (*ExchangeRate, error) {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}

	_, err := r.db.NewInsert().
		Model(rate).
		On("CONFLICT (code) DO UPDATE").
		Set("rate = EXCLUDED.rate").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert exchange rate")
	}

	stored := &ExchangeRate{}
	err = r.db.NewSelect().
		Model(stored).
		Where("?TableAlias.code = ?", rate.Code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve exchange rate")
	}

	return stored, nil
}

func (r *repo) ListExchangeRates(ctx context.Context) ([]*ExchangeRate, error) {
	var rates []*ExchangeRate
	err := r.db.NewSelect().
		Model(&rates).
		Order("code ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list exchange rates")
	}
	return rates, nil
}

func (r *repo) UpsertReferralCode(ctx context.Context, code *ReferralCode) (*ReferralCode, error) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	_, err := r.db.NewInsert().
		Model(code).
		On("CONFLICT (code) DO UPDATE").
		Set("discount_pct = EXCLUDED.discount_pct").
		Set("is_active = EXCLUDED.is_active").
		Set("expires_at = EXCLUDED.expires_at").
		Set("max_redemptions = EXCLUDED.max_redemptions").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert referral code")
	}

	stored := &ReferralCode{}
	err = r.db.NewSelect().
		Model(stored).
		Where("?TableAlias.code = ?", code.Code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve referral code")
	}

	return stored, nil
}

// GetReferralCode is the storefront read: codes past expiry, redeemed out,
// or deactivated report as absent.
func (r *repo) GetReferralCode(ctx context.Context, code string) (*ReferralCode, error) {
	record := &ReferralCode{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve referral code")
	}

	if !record.Usable(time.Now()) {
		return nil, ErrNotFound
	}

	return record, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
