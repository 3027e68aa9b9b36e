package pricegrid

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "admin.password_reset" }

type InitializePasswordResetResponse struct {
	// ResetToken is exposed for callers that bypass the notifier, tests
	// mostly. Production clients receive it only through the reset link.
	ResetToken          string
	NotificationWarning string
	Success             bool
}

type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	notifier Notifier
	config   Config
	logger   Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, tokens TokenService, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		tokens:   tokens,
		notifier: NewLogNotifier(nil),
		config:   cfg,
		logger:   defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithNotifier(n Notifier) *InitializePasswordResetHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// Unlike login, this operation does report an unknown email. That is
	// the documented contract, not an oversight; see the package doc.
	admin, err := h.repo.Admins().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("no admin account for that email", goerrors.CategoryNotFound).
				WithTextCode(TextCodeNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve admin for password reset")
	}

	ttl := h.config.GetResetDuration()
	token, err := h.tokens.GenerateWithTTL(admin.ID.String(), PurposeReset, ttl)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	// Storing the token verbatim next to its expiry is what makes the link
	// single-use; a fresh request overwrites any pending pair.
	expiresAt := time.Now().Add(ttl)
	if err := h.repo.Admins().SetResetToken(ctx, admin.ID, token, expiresAt); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	link := BuildActionLink(h.config.GetFrontendURL(), "reset-password", token)
	if err := h.notifier.SendResetLink(ctx, admin.Email, link); err != nil {
		h.logger.Warn("reset notification failed: %v", err)
		resp.NotificationWarning = "could not deliver the reset email, contact support"
	}

	resp.ResetToken = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
