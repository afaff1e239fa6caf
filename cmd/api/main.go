package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/ports"
	httphandlers "github.com/writify/writify-backend/internal/handlers/http"
	"github.com/writify/writify-backend/internal/handlers/realtime"
	"github.com/writify/writify-backend/internal/infrastructure/config"
	"github.com/writify/writify-backend/internal/infrastructure/i18n"
	"github.com/writify/writify-backend/internal/infrastructure/logging"
	"github.com/writify/writify-backend/internal/infrastructure/markdown"
	"github.com/writify/writify-backend/internal/infrastructure/messaging"
	"github.com/writify/writify-backend/internal/infrastructure/oauth"
	"github.com/writify/writify-backend/internal/infrastructure/persistence/postgres"
	"github.com/writify/writify-backend/internal/infrastructure/session"
	"github.com/writify/writify-backend/internal/infrastructure/storage"
	"github.com/writify/writify-backend/internal/services"
)

// @title                      Writify API
// @version                    1.0
// @description                Marketplace where university students post assignment requests and writers accept them.
// @BasePath                   /
// @securityDefinitions.apikey SessionCookie
// @in                         cookie
// @name                       writify_session
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	logger := logging.NewSlogLogger(cfg.Logging.Level)
	logger.Info("starting writify backend",
		"env", cfg.Env,
		"version", "dev",
	)

	if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		log.Fatal(err)
	}

	db, err := postgres.NewDatabaseConnection(&cfg.Database, cfg.Env, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		log.Fatal(err)
	}

	i18nService, err := i18n.NewDefault("en")
	if err != nil {
		logger.Error("failed to initialize i18n", "error", err)
		log.Fatal(err)
	}
	logger.Info("i18n initialized",
		"default_language", i18nService.GetDefaultLanguage(),
		"supported_languages", i18nService.GetSupportedLanguages(),
	)

	secret := cfg.Session.Secret
	if secret == "" {
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
		secret = session.RandomSecret()
	}
	keys, err := session.DeriveKeys(secret)
	if err != nil {
		log.Fatal(err)
	}
	sessionStore := newSessionStore(cfg, db, keys)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	events := messaging.FanOut{hub}
	if cfg.Messaging.URL != "" {
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.Messaging.URL, cfg.Messaging.Exchange, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			log.Fatal(err)
		}
		defer rabbit.Close()
		events = append(events, rabbit)
	}

	var images ports.ImageStore
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinIOImageStore(cfg.Storage, logger)
		if err != nil {
			logger.Error("failed to initialize object storage", "error", err)
			log.Fatal(err)
		}
		images = store
	} else {
		logger.Warn("MINIO_ENDPOINT not set, portfolio uploads disabled")
	}

	repos := services.Repositories{
		Users:       postgres.NewUserRepository(db),
		Requests:    postgres.NewRequestRepository(db),
		Assignments: postgres.NewAssignmentRepository(db),
		Ratings:     postgres.NewRatingRepository(db),
		Portfolios:  postgres.NewPortfolioRepository(db),
		Queries:     postgres.NewQueryRepository(db),
	}
	uow := postgres.NewUnitOfWork(db)
	render := markdown.NewRenderer().Render
	withEvents := services.WithEvents(events)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httphandlers.NewRouter(httphandlers.Dependencies{
		Env:            cfg.Env,
		BaseURL:        cfg.Server.BaseURL,
		FrontendURL:    cfg.Server.FrontendURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableSwagger:  !cfg.IsProduction(),
		SessionName:    cfg.Session.Name,
		SessionStore:   sessionStore,
		I18n:           i18nService,
		Logger:         logger,
		Identity:       oauth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.RedirectURL),
		State:          oauth.NewStateSigner(keys.State),
		Auth:           services.NewAuthService(repos.Users, cfg.University.EmailDomain, logger),
		Requests:       services.NewRequestService(repos, uow, logger, withEvents),
		Assignments:    services.NewAssignmentService(repos, uow, logger, withEvents),
		Ratings:        services.NewRatingService(repos, uow, logger, withEvents),
		Profiles:       services.NewProfileService(repos, images, logger, withEvents),
		Writers:        services.NewWriterService(repos.Queries, render, logger),
		Hub:            hub,
		Markdown:       render,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"swagger", !cfg.IsProduction(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func newSessionStore(cfg *config.Config, db *gorm.DB, keys session.Keys) sessions.Store {
	opts := session.Options{
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		SameSite: cfg.Session.SameSite,
	}
	if cfg.Session.Store == "cookie" {
		return session.NewCookieStore(keys, opts)
	}
	return session.NewGormStore(db, keys, opts)
}
