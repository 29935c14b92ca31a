package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bookshelf-auth/internal/api/http"
	"github.com/spec-kit/bookshelf-auth/internal/api/http/handlers"
	"github.com/spec-kit/bookshelf-auth/internal/auth"
	"github.com/spec-kit/bookshelf-auth/internal/config"
	"github.com/spec-kit/bookshelf-auth/internal/events"
	"github.com/spec-kit/bookshelf-auth/internal/mail"
	"github.com/spec-kit/bookshelf-auth/internal/observability"
	"github.com/spec-kit/bookshelf-auth/internal/persistence"
	"github.com/spec-kit/bookshelf-auth/internal/repository"
	"github.com/spec-kit/bookshelf-auth/internal/service"
	"github.com/spec-kit/bookshelf-auth/internal/worker"
	"github.com/spec-kit/bookshelf-auth/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
	} else {
		logger.Warn("using in-memory credential store; data is lost on restart")
		store = repository.NewMemoryStore()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mailer, err := newMailer(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	verificationService := service.NewVerificationService(cfg.Auth, service.VerificationDependencies{
		Store:      store,
		Cooldowns:  repository.NewCooldownRepository(redis.Client),
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:         store,
		Verifications: verificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	if cfg.Admin.Email != "" {
		created, err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
		logger.Info("admin bootstrap", zap.String("email", cfg.Admin.Email), zap.Bool("created", created))
	}

	session := auth.NewSessionMiddleware(authService.TokenManager(), auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}, logger)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	deps := map[string]handlers.Pinger{"redis": redis, "postgres": nil}
	if pg.PoolHandle() != nil {
		deps["postgres"] = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:    handlers.NewAuthHandler(authService, verificationService, session),
		Session: session,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newMailer(cfg config.MailConfig, logger *zap.Logger) (mail.Mailer, error) {
	var provider mail.Mailer
	switch cfg.Provider {
	case "resend":
		resendMailer, err := mail.NewResendMailer(cfg.ResendAPIKey, cfg.From)
		if err != nil {
			return nil, err
		}
		provider = resendMailer
	default:
		provider = mail.NewLogMailer(cfg.From, logger)
	}
	return mail.NewRetryingMailer(provider, cfg.Timeout(), cfg.MaxRetries, logger), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
