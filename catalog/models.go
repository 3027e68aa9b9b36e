// Package catalog holds the storefront resources administrators manage:
// product plans, exchange rates, and referral codes. Every resource follows
// the same pattern, a validated upsert keyed by a natural key, read back by
// an unauthenticated storefront.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Plan is a purchasable product tier, addressed by (kind, slug).
type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:pln"`

	ID          uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Kind        string    `bun:"kind,notnull" json:"kind"`
	Slug        string    `bun:"slug,notnull" json:"slug"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	PriceCents  int64     `bun:"price_cents,notnull" json:"price_cents"`
	Currency    string    `bun:"currency,notnull,default:'USD'" json:"currency"`
	Period      string    `bun:"period,notnull,default:'monthly'" json:"period"`
	Features    []string  `bun:"features,type:jsonb" json:"features,omitempty"`
	Active      bool      `bun:"is_active,notnull,default:true" json:"is_active"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ExchangeRate is a currency conversion entry keyed by its ISO code.
type ExchangeRate struct {
	bun.BaseModel `bun:"table:exchange_rates,alias:fx"`

	ID   uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Code string    `bun:"code,notnull,unique" json:"code"`
	Rate float64   `bun:"rate,notnull" json:"rate"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ReferralCode is a discount code keyed by the code string itself.
type ReferralCode struct {
	bun.BaseModel `bun:"table:referral_codes,alias:ref"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Code           string     `bun:"code,notnull,unique" json:"code"`
	DiscountPct    int        `bun:"discount_pct,notnull" json:"discount_pct"`
	Active         bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	ExpiresAt      *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	TimesRedeemed  int        `bun:"times_redeemed" json:"times_redeemed"`
	MaxRedemptions int        `bun:"max_redemptions" json:"max_redemptions,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Usable reports whether the code can still be redeemed at the given instant.
func (r *ReferralCode) Usable(now time.Time) bool {
	if !r.Active {
		return false
	}
	if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return false
	}
	if r.MaxRedemptions > 0 && r.TimesRedeemed >= r.MaxRedemptions {
		return false
	}
	return true
}
