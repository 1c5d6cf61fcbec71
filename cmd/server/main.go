package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/loreste/go-spa-auth"
)

// The SPA build is embedded so the binary ships as a single artifact.
//
//go:embed public
var embeddedFS embed.FS

type App struct {
	config    *gconfig.Container[*BaseConfig]
	bunDB     *bun.DB
	auth      auth.Authenticator
	auther    auth.HTTPAuthenticator
	validator auth.TokenValidator
	repo      auth.RepositoryManager
	srv       router.Server[*fiber.App]
	logger    *glog.BaseLogger
}

func (a *App) Config() *BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(DefaultConfig()).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPAuth(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.Config().GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*auth.RevokedToken)(nil))

	dialect := sqlitedialect.New()
	client, err := persistence.New(pcfg, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = auth.NewRepositoryManager(client.DB())

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	publicFS, err := fs.Sub(embeddedFS, "public")
	if err != nil {
		return err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		fapp := router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))

		fapp.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Authorization,Content-Type",
		}))

		// SPA fallback: everything outside /api resolves to a static asset
		// or index.html so client side routes survive a refresh.
		fapp.Use(filesystem.New(filesystem.Config{
			Root:         http.FS(publicFS),
			Index:        "index.html",
			NotFoundFile: "index.html",
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/api")
			},
		}))

		return fapp
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv

	return nil
}

func WithHTTPAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()
	repo := app.repo

	if err := repo.Validate(); err != nil {
		return err
	}

	userProvider := auth.NewUserProvider(repo.Users())
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	sink := auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		app.GetLogger("auth:activity").Info("activity",
			"event", string(event.EventType),
			"user_id", event.UserID,
		)
		return nil
	})

	authenticator := auth.NewAuthenticator(userProvider, cfg)
	authenticator.WithLogger(app.GetLogger("auth:authn"))
	authenticator.WithActivitySink(sink)

	validator := auth.NewRevocationAwareValidator(
		authenticator.TokenService(),
		repo.RevokedTokens(),
		app.GetLogger("auth:tokens"),
	)
	authenticator.WithTokenValidator(validator)

	httpAuth, err := auth.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		return err
	}
	httpAuth.Logger = app.GetLogger("auth:http")

	app.auth = authenticator
	app.auther = httpAuth
	app.validator = validator

	auth.RegisterAPIRoutes(app.srv.Router().Group("/api"),
		auth.WithControllerRepo(repo),
		auth.WithControllerAuthenticator(authenticator),
		auth.WithControllerConfig(cfg),
		auth.WithControllerHTTPAuthenticator(httpAuth),
		auth.WithControllerTokenValidator(validator),
		auth.WithControllerActivitySink(sink),
		auth.WithControllerLogger(app.GetLogger("auth:ctrl")),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
