package pricegrid

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

type AuthControllerRoutes struct {
	Register       string
	VerifyEmail    string
	Login          string
	Logout         string
	ForgotPassword string
	ResetPassword  string
	ChangePassword string
	Me             string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Tokens   TokenService
	Auther   *Auther
	Config   Config
	Notifier Notifier
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:       "/register",
			VerifyEmail:    "/verify-email/:token",
			Login:          "/login",
			Logout:         "/logout",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password/:token",
			ChangePassword: "/change-password",
			Me:             "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.Auther == nil {
		c.Auther = NewAuthenticator(c.Repo, c.Tokens, c.Config)
	}

	if c.Notifier == nil {
		c.Notifier = NewLogNotifier(c.Logger)
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerTokens(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerNotifier(n Notifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = n
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterAuthRoutes mounts the auth surface on the given router. The
// protected group carries the session middleware supplied by the caller so
// the controller stays import-cycle free of the middleware package.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController, protect fiber.Handler) {
	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.VerifyEmail, controller.VerifyEmailPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost)
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost)

	app.Post(controller.Routes.ChangePassword, protect, controller.ChangePasswordPost)
	app.Get(controller.Routes.Me, protect, controller.MeGet)
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name     string `form:"name" json:"name"`
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: ", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: ", "error", err)
		return err
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER =======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	var res *RegisterAdminResponse
	msg := RegisterAdminMessage{
		Name:     payload.Name,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *RegisterAdminResponse) {
			res = resp
		},
	}

	register := NewRegisterAdminHandler(a.Repo, a.Tokens, a.Config).WithNotifier(a.Notifier)
	if err := register.Execute(c.Context(), msg); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Message: "admin registered, verify your email",
		Warning: res.NotificationWarning,
		Data:    res.Admin,
	})
}

func (a *AuthController) VerifyEmailPost(c *fiber.Ctx) error {
	token := c.Params("token", "")
	if token == "" {
		return ErrNoToken
	}

	var res *VerifyEmailResponse
	msg := VerifyEmailMessage{
		Token: token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verify := NewVerifyEmailHandler(a.Repo, a.Tokens)
	if err := verify.Execute(c.Context(), msg); err != nil {
		return err
	}

	return c.JSON(APIResponse{
		Success: true,
		Message: "email verified",
		Data:    res.Admin,
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, admin, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	// dual channel: cookie for browser clients, body for bearer clients
	SetSessionCookie(c, a.Config, token)

	return c.JSON(APIResponse{
		Success: true,
		Message: "logged in",
		Token:   token,
		Data:    admin,
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	ClearSessionCookie(c, a.Config)
	return c.JSON(APIResponse{
		Success: true,
		Message: "logged out",
	})
}

// ForgotPasswordPayload holds the reset request body
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload: ", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	var res *InitializePasswordResetResponse
	msg := InitializePasswordResetMessage{
		Email: payload.Email,
		OnResponse: func(resp *InitializePasswordResetResponse) {
			res = resp
		},
	}

	initReset := NewInitializePasswordResetHandler(a.Repo, a.Tokens, a.Config).WithNotifier(a.Notifier)
	if err := initReset.Execute(c.Context(), msg); err != nil {
		return err
	}

	if a.Debug {
		fmt.Println("======= PASSWORD RESET ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("=============================")
	}

	return c.JSON(APIResponse{
		Success: true,
		Message: "reset link sent",
		Warning: res.NotificationWarning,
	})
}

// ResetPasswordPayload holds the new password for a reset
type ResetPasswordPayload struct {
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	token := c.Params("token", "")
	if token == "" {
		return ErrNoToken
	}

	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("reset password parse payload: ", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	finalize := NewFinalizePasswordResetHandler(a.Repo, a.Tokens)
	if err := finalize.Execute(c.Context(), FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
	}); err != nil {
		return err
	}

	return c.JSON(APIResponse{
		Success: true,
		Message: "password has been reset",
	})
}

// ChangePasswordPayload holds the credential rotation body
type ChangePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) ChangePasswordPost(c *fiber.Ctx) error {
	admin, ok := AdminFromLocals(c)
	if !ok {
		return ErrNoToken
	}

	payload := new(ChangePasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("change password parse payload: ", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	var res *ChangePasswordResponse
	msg := ChangePasswordMessage{
		AdminID:         admin.ID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
		OnResponse: func(resp *ChangePasswordResponse) {
			res = resp
		},
	}

	change := NewChangePasswordHandler(a.Repo, a.Tokens, a.Config)
	if err := change.Execute(c.Context(), msg); err != nil {
		return err
	}

	SetSessionCookie(c, a.Config, res.SessionToken)

	return c.JSON(APIResponse{
		Success: true,
		Message: "password changed",
		Token:   res.SessionToken,
	})
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	admin, ok := AdminFromLocals(c)
	if !ok {
		return ErrNoToken
	}

	return c.JSON(APIResponse{
		Success: true,
		Message: "ok",
		Data:    admin,
	})
}
