package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPAuthenticator is the middleware surface the API controller needs.
type HTTPAuthenticator interface {
	ProtectedRoute(cfg Config, validator TokenValidator, errorHandler func(router.Context, error) error) router.MiddlewareFunc
	MakeAPIAuthErrorHandler(optional bool) func(router.Context, error) error
}

// APIControllerRoutes holds the route paths, overridable per deployment.
type APIControllerRoutes struct {
	Signup  string
	Login   string
	Profile string
	Logout  string
	Hello   string
}

// APIController serves the JSON authentication API.
type APIController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auth         Authenticator
	Config       Config
	Routes       *APIControllerRoutes
	Auther       HTTPAuthenticator
	Validator    TokenValidator
	Sink         ActivitySink
	ErrorHandler func(router.Context, error) error
}

type APIControllerOption func(*APIController) *APIController

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger: defLogger{},
		Sink:   noopActivitySink{},
		Routes: &APIControllerRoutes{
			Signup:  "/signup",
			Login:   "/login",
			Profile: "/profile",
			Logout:  "/logout",
			Hello:   "/hello",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in API controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in API controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in API controller...")
	}

	if c.Validator == nil {
		panic("Missing TokenValidator in API controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = RenderError
	}

	return c
}

func WithControllerLogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuthenticator(auth Authenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auth = auth
		return c
	}
}

func WithControllerConfig(cfg Config) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Config = cfg
		return c
	}
}

func WithControllerHTTPAuthenticator(auther HTTPAuthenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokenValidator(validator TokenValidator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Validator = validator
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Sink = normalizeActivitySink(sink)
		return c
	}
}

// RegisterAPIRoutes mounts the controller under the given router group. The
// profile and logout routes sit behind the token gate; the gate runs the
// full two phase validation before either handler executes.
func RegisterAPIRoutes[T any](app router.Router[T], opts ...APIControllerOption) {
	controller := NewAPIController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Validator,
		controller.Auther.MakeAPIAuthErrorHandler(false),
	)

	app.Post(controller.Routes.Signup, controller.Signup).
		SetName("api.signup")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("api.login")

	app.Get(controller.Routes.Profile, controller.Profile, protected).
		SetName("api.profile")

	app.Post(controller.Routes.Logout, controller.Logout, protected).
		SetName("api.logout")

	app.Get(controller.Routes.Hello, controller.Hello).
		SetName("api.hello")
}

// SignupRequest payload
type SignupRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required.Error("Email and password are required"),
			validation.By(ValidateEmailShape),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("Email and password are required"),
			validation.Length(8, 0).Error("Password must be at least 8 characters"),
		),
	)
}

func (a *APIController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Missing data").
			WithTextCode(TextCodeInvalidInput).
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	if a.Debug {
		a.Logger.Debug("signup payload", "payload", print.MaybeHighlightJSON(payload))
	}

	var created *User
	registerUser := NewRegisterUserHandler(a.Repo).WithActivitySink(a.Sink)
	err := registerUser.Execute(ctx.Context(), RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	})
	if err != nil {
		a.Logger.Error("signup create user", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"msg":  "User created",
		"user": created,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules. Shape checks stay out of login on
// purpose: a malformed email fails authentication, it does not reveal
// whether the account exists.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, ErrInvalidCredentials)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return a.ErrorHandler(ctx, ErrInvalidCredentials)
	}

	result, err := a.Auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login authentication", "error", err)
		// Store outages are not bad credentials. Only refusals collapse
		// into the uniform 401.
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryInternal {
			return a.ErrorHandler(ctx, err)
		}
		return a.ErrorHandler(ctx, ErrInvalidCredentials)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token":   result.Token,
		"user_id": result.Identity.ID(),
		"email":   result.Identity.Email(),
	})
}

func (a *APIController) Profile(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.contextKey())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnableToFindSession)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), claims.Subject())
	if err != nil {
		if errors.IsNotFound(err) {
			return a.ErrorHandler(ctx, ErrUserNotFound)
		}
		a.Logger.Error("profile lookup", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to load profile"))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

func (a *APIController) Logout(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.contextKey())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnableToFindSession)
	}

	revoke := NewRevokeTokenHandler(a.Repo.RevokedTokens()).WithActivitySink(a.Sink)
	err := revoke.Execute(ctx.Context(), RevokeTokenMessage{
		JTI:    claims.TokenID(),
		UserID: claims.Subject(),
	})
	if err != nil {
		a.Logger.Error("logout revoke token", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	_ = normalizeActivitySink(a.Sink).Record(ctx.Context(), ActivityEvent{
		EventType:  ActivityEventLogout,
		Actor:      ActorRef{ID: claims.Subject(), Type: "user"},
		UserID:     claims.Subject(),
		OccurredAt: time.Now(),
	})

	return ctx.JSON(router.StatusOK, map[string]any{
		"msg": "Logged out successfully",
	})
}

func (a *APIController) Hello(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Hello! I'm a message from the backend.",
	})
}

func (a *APIController) contextKey() string {
	if a.Config == nil {
		return "user"
	}
	return a.Config.GetContextKey()
}

func validationError(err error) *errors.Error {
	msg := "invalid input"
	fields := FormatValidationErrorToMap(err)
	// Surface a single stable message, keeping the per-field map available
	// for richer clients.
	for _, field := range []string{"email", "password", "form"} {
		if v, ok := fields[field]; ok {
			msg = v
			break
		}
	}
	return errors.New(msg, errors.CategoryValidation).
		WithTextCode(TextCodeInvalidInput).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"fields": fields})
}
