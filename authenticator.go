package pricegrid

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther turns credentials into session tokens.
type Auther struct {
	repo   RepositoryManager
	tokens TokenService
	config Config
	logger Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(repo RepositoryManager, tokens TokenService, cfg Config) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		config: cfg,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Login verifies the credential pair and issues a session token. An unknown
// email and a wrong password are indistinguishable to the caller; the
// unverified gate only fires after the password checks out, so it never
// becomes an account-existence oracle either.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *Admin, error) {
	admin, err := s.repo.Admins().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// burn a comparison anyway to keep response timing uniform
			_ = ComparePasswordAndHash(password, RandomPasswordHash())
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("login admin lookup error", "error", err)
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve admin for login")
	}

	if err := ComparePasswordAndHash(password, admin.PasswordHash); err != nil {
		if trackErr := s.repo.Admins().TrackAttemptedLogin(ctx, admin); trackErr != nil {
			s.logger.Warn("failed to track attempted login: %v", trackErr)
		}
		return "", nil, ErrInvalidCredentials
	}

	if !admin.Verified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokens.GenerateWithTTL(admin.ID.String(), PurposeSession, s.config.GetSessionDuration())
	if err != nil {
		s.logger.Error("login token generation error", "error", err)
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	if err := s.repo.Admins().TrackSuccessfulLogin(ctx, admin); err != nil {
		s.logger.Warn("failed to track successful login: %v", err)
	}

	return token, admin.Sanitized(), nil
}

// AdminFromToken resolves a session token back to its live admin record,
// walking the same ladder as the middleware.
func (s *Auther) AdminFromToken(ctx context.Context, raw string) (*Admin, error) {
	claims, err := s.tokens.Validate(raw, PurposeSession)
	if err != nil {
		return nil, err
	}

	return ResolveAdmin(ctx, s.repo.Admins(), claims.Subject)
}
