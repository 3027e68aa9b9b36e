package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/pricegrid/pricegrid"
	"github.com/pricegrid/pricegrid/catalog"
	"github.com/pricegrid/pricegrid/middleware/sessionware"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	signingKey := os.Getenv("PRICEGRID_SIGNING_SECRET")
	if signingKey == "" {
		log.Fatal("PRICEGRID_SIGNING_SECRET is required")
	}

	cfg := pricegrid.SimpleConfig{
		SigningKey:  signingKey,
		FrontendURL: envOr("PRICEGRID_FRONTEND_URL", "http://localhost:3000"),
		CookieName:  envOr("PRICEGRID_COOKIE_NAME", pricegrid.DefaultCookieName),
	}

	db, err := openDatabase(envOr("PRICEGRID_DSN", "file:pricegrid.db?cache=shared"))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := bootstrapSchema(context.Background(), db); err != nil {
		log.Fatalf("failed to bootstrap schema: %v", err)
	}

	repo := pricegrid.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := pricegrid.NewTokenService(cfg.SigningKey)

	app := fiber.New(fiber.Config{
		AppName:      "pricegrid",
		ErrorHandler: pricegrid.HTTPErrorHandler(nil),
	})

	protect := sessionware.New(sessionware.Config{
		TokenValidator: tokens,
		Admins:         repo.Admins(),
		CookieName:     cfg.GetCookieName(),
	})

	authController := pricegrid.NewAuthController(
		pricegrid.WithControllerRepo(repo),
		pricegrid.WithControllerTokens(tokens),
		pricegrid.WithControllerConfig(cfg),
	)
	pricegrid.RegisterAuthRoutes(app.Group("/auth"), authController, protect)

	catalogController := catalog.NewController(repo.Catalog())
	catalog.RegisterRoutes(app.Group("/catalog"), catalogController, protect)

	addr := envOr("PRICEGRID_ADDR", ":8080")
	log.Printf("pricegrid listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func bootstrapSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*pricegrid.Admin)(nil),
		(*catalog.Plan)(nil),
		(*catalog.ExchangeRate)(nil),
		(*catalog.ReferralCode)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	// the (kind, slug) pair is the plan's natural key; the upsert conflict
	// target needs the unique index in place
	if _, err := db.NewCreateIndex().
		Model((*catalog.Plan)(nil)).
		Index("idx_plans_kind_slug").
		Unique().
		Column("kind", "slug").
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	return nil
}
