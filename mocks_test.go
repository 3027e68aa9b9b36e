package pricegrid_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/pricegrid/pricegrid"
	"github.com/pricegrid/pricegrid/catalog"
)

// stubRepo is a passthrough RepositoryManager: RunInTx invokes the enclosed
// function with a zero transaction so handler logic runs against the mocked
// repositories, and the function's error is reported as the transaction's.
type stubRepo struct {
	admins pricegrid.Admins
}

func (s *stubRepo) Validate() error { return nil }
func (s *stubRepo) MustValidate()   {}

func (s *stubRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		var tx bun.Tx
		return f(ctx, tx)
	}
}

func (s *stubRepo) Admins() pricegrid.Admins    { return s.admins }
func (s *stubRepo) Catalog() catalog.Repository { return nil }

type MockAdmins struct {
	mock.Mock
}

func (m *MockAdmins) Create(ctx context.Context, admin *pricegrid.Admin) (*pricegrid.Admin, error) {
	args := m.Called(ctx, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricegrid.Admin), args.Error(1)
}

func (m *MockAdmins) CreateTx(ctx context.Context, tx bun.IDB, admin *pricegrid.Admin) (*pricegrid.Admin, error) {
	args := m.Called(ctx, tx, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricegrid.Admin), args.Error(1)
}

func (m *MockAdmins) GetByEmail(ctx context.Context, email string) (*pricegrid.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricegrid.Admin), args.Error(1)
}

func (m *MockAdmins) GetByID(ctx context.Context, id uuid.UUID) (*pricegrid.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricegrid.Admin), args.Error(1)
}

func (m *MockAdmins) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAdmins) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdmins) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdmins) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockAdmins) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, tx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockAdmins) ConsumeResetToken(ctx context.Context, id uuid.UUID, token, passwordHash string) error {
	args := m.Called(ctx, id, token, passwordHash)
	return args.Error(0)
}

func (m *MockAdmins) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) error {
	args := m.Called(ctx, tx, id, token, passwordHash)
	return args.Error(0)
}

func (m *MockAdmins) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdmins) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAdmins) UpdatePasswordHashTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAdmins) TrackAttemptedLogin(ctx context.Context, admin *pricegrid.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdmins) TrackSuccessfulLogin(ctx context.Context, admin *pricegrid.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationLink(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

func (m *MockNotifier) SendResetLink(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func testConfig() pricegrid.SimpleConfig {
	return pricegrid.SimpleConfig{
		SigningKey:  "test-signing-secret",
		FrontendURL: "https://store.example.com",
	}
}
