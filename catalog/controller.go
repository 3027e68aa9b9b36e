package catalog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Controller serves the admin upsert surface and the storefront reads.
type Controller struct {
	Repo Repository
}

func NewController(repo Repository) *Controller {
	if repo == nil {
		panic("Missing catalog Repository in controller...")
	}
	return &Controller{Repo: repo}
}

// RegisterRoutes mounts the catalog surface. The protect middleware guards
// the write endpoints; reads stay open for the storefront.
func RegisterRoutes(app fiber.Router, controller *Controller, protect fiber.Handler) {
	app.Put("/plans", protect, controller.UpsertPlan)
	app.Put("/exchange-rates", protect, controller.UpsertExchangeRate)
	app.Put("/referral-codes", protect, controller.UpsertReferralCode)

	app.Get("/plans", controller.ListPlans)
	app.Get("/plans/:kind/:slug", controller.GetPlan)
	app.Get("/exchange-rates", controller.ListExchangeRates)
	app.Get("/referral-codes/:code", controller.GetReferralCode)
}

// PlanPayload is the upsert body for a plan
type PlanPayload struct {
	Kind        string   `form:"kind" json:"kind"`
	Slug        string   `form:"slug" json:"slug"`
	Name        string   `form:"name" json:"name"`
	Description string   `form:"description" json:"description"`
	PriceCents  int64    `form:"price_cents" json:"price_cents"`
	Currency    string   `form:"currency" json:"currency"`
	Period      string   `form:"period" json:"period"`
	Features    []string `form:"features" json:"features"`
	Active      *bool    `form:"is_active" json:"is_active"`
}

// Validate will run validation rules
func (p PlanPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Kind, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Slug, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.PriceCents, validation.Min(int64(0))),
		validation.Field(&p.Currency, validation.Length(3, 3), is.UpperCase),
		validation.Field(&p.Period, validation.In("monthly", "quarterly", "yearly", "lifetime", "one_time")),
	)
}

func (ctl *Controller) UpsertPlan(c *fiber.Ctx) error {
	payload := new(PlanPayload)

	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	plan := &Plan{
		Kind:        payload.Kind,
		Slug:        payload.Slug,
		Name:        payload.Name,
		Description: payload.Description,
		PriceCents:  payload.PriceCents,
		Currency:    payload.Currency,
		Period:      payload.Period,
		Features:    payload.Features,
		Active:      true,
	}
	if payload.Currency == "" {
		plan.Currency = "USD"
	}
	if payload.Period == "" {
		plan.Period = "monthly"
	}
	if payload.Active != nil {
		plan.Active = *payload.Active
	}

	stored, err := ctl.Repo.UpsertPlan(c.Context(), plan)
	if err != nil {
		return err
	}

	return c.JSON(response{Success: true, Message: "plan saved", Data: stored})
}

func (ctl *Controller) ListPlans(c *fiber.Ctx) error {
	plans, err := ctl.Repo.ListPlans(c.Context(), c.Query("kind"))
	if err != nil {
		return err
	}
	return c.JSON(response{Success: true, Message: "ok", Data: plans})
}

func (ctl *Controller) GetPlan(c *fiber.Ctx) error {
	plan, err := ctl.Repo.GetPlan(c.Context(), c.Params("kind"), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(response{Success: true, Message: "ok", Data: plan})
}

// ExchangeRatePayload is the upsert body for a rate
type ExchangeRatePayload struct {
	Code string  `form:"code" json:"code"`
	Rate float64 `form:"rate" json:"rate"`
}

// Validate will run validation rules
func (p ExchangeRatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Code, validation.Required, validation.Length(3, 3), is.UpperCase),
		validation.Field(&p.Rate, validation.Required, validation.Min(0.0)),
	)
}

func (ctl *Controller) UpsertExchangeRate(c *fiber.Ctx) error {
	payload := new(ExchangeRatePayload)

	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	stored, err := ctl.Repo.UpsertExchangeRate(c.Context(), &ExchangeRate{
		Code: payload.Code,
		Rate: payload.Rate,
	})
	if err != nil {
		return err
	}

	return c.JSON(response{Success: true, Message: "exchange rate saved", Data: stored})
}

func (ctl *Controller) ListExchangeRates(c *fiber.Ctx) error {
	rates, err := ctl.Repo.ListExchangeRates(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(response{Success: true, Message: "ok", Data: rates})
}

// ReferralCodePayload is the upsert body for a referral code
type ReferralCodePayload struct {
	Code           string `form:"code" json:"code"`
	DiscountPct    int    `form:"discount_pct" json:"discount_pct"`
	Active         *bool  `form:"is_active" json:"is_active"`
	ExpiresAt      string `form:"expires_at" json:"expires_at"`
	MaxRedemptions int    `form:"max_redemptions" json:"max_redemptions"`
}

// Validate will run validation rules
func (p ReferralCodePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Code, validation.Required, validation.Length(2, 50), is.Alphanumeric),
		validation.Field(&p.DiscountPct, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&p.ExpiresAt, validation.Date("2006-01-02")),
		validation.Field(&p.MaxRedemptions, validation.Min(0)),
	)
}

func (ctl *Controller) UpsertReferralCode(c *fiber.Ctx) error {
	payload := new(ReferralCodePayload)

	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	record := &ReferralCode{
		Code:           payload.Code,
		DiscountPct:    payload.DiscountPct,
		Active:         true,
		MaxRedemptions: payload.MaxRedemptions,
	}
	if payload.Active != nil {
		record.Active = *payload.Active
	}
	if payload.ExpiresAt != "" {
		if t, err := parseDate(payload.ExpiresAt); err == nil {
			record.ExpiresAt = &t
		}
	}

	stored, err := ctl.Repo.UpsertReferralCode(c.Context(), record)
	if err != nil {
		return err
	}

	return c.JSON(response{Success: true, Message: "referral code saved", Data: stored})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (ctl *Controller) GetReferralCode(c *fiber.Ctx) error {
	code, err := ctl.Repo.GetReferralCode(c.Context(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(response{Success: true, Message: "ok", Data: code})
}
