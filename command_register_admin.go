package pricegrid

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterAdminMessage struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *RegisterAdminResponse)
}

func (e RegisterAdminMessage) Type() string { return "admin.register" }

type RegisterAdminResponse struct {
	Admin *Admin
	// VerificationToken is handed back so tests and callers that bypass the
	// notifier can complete the verification flow.
	VerificationToken string
	// NotificationWarning is set when the admin was created but the
	// verification link could not be delivered. Registration still succeeded.
	NotificationWarning string
	Success             bool
}

type RegisterAdminHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	notifier Notifier
	config   Config
	logger   Logger
}

func NewRegisterAdminHandler(repo RepositoryManager, tokens TokenService, cfg Config) *RegisterAdminHandler {
	return &RegisterAdminHandler{
		repo:     repo,
		tokens:   tokens,
		notifier: NewLogNotifier(nil),
		config:   cfg,
		logger:   defLogger{},
	}
}

func (h *RegisterAdminHandler) WithNotifier(n Notifier) *RegisterAdminHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

func (h *RegisterAdminHandler) WithLogger(logger Logger) *RegisterAdminHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAdminHandler) Execute(ctx context.Context, event RegisterAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAdminHandler) execute(ctx context.Context, event RegisterAdminMessage) error {
	admin := &Admin{}
	resp := &RegisterAdminResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// The cap check runs inside the transaction, but the store's
		// duplicate-key rejection stays authoritative for insert races.
		count, err := h.repo.Admins().Count(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count admin accounts")
		}
		if count >= MaxAdminAccounts {
			return ErrCapacityExceeded
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		admin.PasswordHash = hash
		admin.Name = event.Name
		admin.Email = event.Email
		admin.Username = event.Username

		if admin, err = h.repo.Admins().CreateTx(ctx, tx, admin); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create admin")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admin registration transaction failed")
	}

	token, err := h.tokens.GenerateWithTTL(admin.ID.String(), PurposeVerification, h.config.GetVerificationDuration())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	// delivery failure never undoes the registration
	link := BuildActionLink(h.config.GetFrontendURL(), "verify-email", token)
	if err := h.notifier.SendVerificationLink(ctx, admin.Email, link); err != nil {
		h.logger.Warn("verification notification failed: %v", err)
		resp.NotificationWarning = "could not deliver the verification email, contact support"
	}

	resp.Admin = admin.Sanitized()
	resp.VerificationToken = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
