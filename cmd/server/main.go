package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/usecaselabs/usecases"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("usecases"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
	log := lgr.GetLogger("app")

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/app.ini"
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Error("config load failed", "path", configPath, "error", err)
		os.Exit(1)
	}

	if cfg.Auth.SigningKey == "" {
		log.Error("missing JWT signing key, set auth.signing_key or JWT_SIGNING_KEY")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.Database.DSN)
	if err != nil {
		log.Error("database open failed", "dsn", cfg.Database.DSN, "error", err)
		os.Exit(1)
	}

	repo := usecases.NewRepositoryManager(db)
	repo.MustValidate()

	tokenService := usecases.NewTokenService(
		[]byte(cfg.Auth.SigningKey),
		cfg.Auth.TokenExpiration,
		cfg.Auth.Issuer,
		lgr.GetLogger("token"),
	)

	auther := usecases.NewAuthenticator(repo, cfg).
		WithTokenService(tokenService).
		WithLogger(lgr.GetLogger("auth"))

	var mailer usecases.Mailer
	if cfg.SMTP.Host != "" {
		mailer = usecases.NewSMTPMailer(cfg.SMTP, lgr.GetLogger("mailer"))
	} else {
		log.Warn("no SMTP host configured, activation emails will be skipped")
	}

	registerHandler := usecases.NewRegisterUserHandler(repo, mailer, lgr.GetLogger("register"))
	activateHandler := usecases.NewActivateUserHandler(repo)

	authController := usecases.NewAuthController(
		usecases.WithAuthRepo(repo),
		usecases.WithAuthenticator(auther),
		usecases.WithRegisterHandler(registerHandler),
		usecases.WithActivateHandler(activateHandler),
		usecases.WithAuthLogger(lgr.GetLogger("auth-http")),
	)
	authController.Debug = cfg.Server.Debug

	useCaseController := usecases.NewUseCaseController(
		usecases.WithUseCaseRepo(repo),
		usecases.WithUseCaseLogger(lgr.GetLogger("usecase-http")),
	)
	useCaseController.Debug = cfg.Server.Debug

	userAdminController := usecases.NewUserAdminController(
		usecases.WithUserAdminRepo(repo),
		usecases.WithUserAdminLogger(lgr.GetLogger("users-http")),
	)

	app := fiber.New(fiber.Config{
		AppName:      "usecases",
		ErrorHandler: usecases.HTTPErrorHandler,
	})

	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API funcionando!")
	})

	var validator usecases.TokenValidator = tokenService
	if prev := cfg.Auth.PreviousSigningKey; prev != "" {
		// Tokens issued under the previous key keep working until
		// they expire, so a key rotation never forces a re-login.
		validator = usecases.NewMultiTokenValidator(
			tokenService,
			usecases.NewTokenService(
				[]byte(prev),
				cfg.Auth.TokenExpiration,
				cfg.Auth.Issuer,
				lgr.GetLogger("token-prev"),
			),
		)
	}

	authenticate := usecases.AuthenticateGate(validator)

	api := app.Group("/api")
	usecases.RegisterAuthRoutes(api, authController, authenticate)
	usecases.RegisterUseCaseRoutes(api, useCaseController, authenticate)
	usecases.RegisterUserAdminRoutes(api, userAdminController, authenticate)

	go func() {
		log.Info("listening", "address", cfg.Server.Address)
		if err := app.Listen(cfg.Server.Address); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	sig := waitExitSignal()
	log.Info("shutting down", "signal", sig.String())

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	if err := db.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
}

// openDatabase builds the bun handle and brings the schema up to date.
// The handle is owned by main and closed on shutdown.
func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := usecases.SyncSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
