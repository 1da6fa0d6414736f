// Package main is the entry point for the injury case API server.
//
// It loads configuration, connects to PostgreSQL, builds the external
// clients (Stripe, Brevo, S3, DocuSeal), wires the domain services and
// handlers onto the core HTTP chassis, and serves until a shutdown signal
// arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shahbazasghar1038/injury-back-end/internal/api/handlers"
	"github.com/shahbazasghar1038/injury-back-end/internal/auth"
	"github.com/shahbazasghar1038/injury-back-end/internal/billing"
	"github.com/shahbazasghar1038/injury-back-end/internal/cases"
	"github.com/shahbazasghar1038/injury-back-end/internal/config"
	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/db"
	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig(secretProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("injury case API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	// Repositories.
	userRepo := db.NewUserRepository(pool)
	caseRepo := db.NewCaseRepository(pool)
	taskRepo := db.NewTaskRepository(pool)
	lienRepo := db.NewLienOfferRepository(pool)
	treatmentRepo := db.NewTreatmentRepository(pool)
	invitationRepo := db.NewInvitationRepository(pool)
	archiveRepo := db.NewArchiveRepository(pool)
	intakeRepo := db.NewIntakeRepository(pool)
	quotaRepo := db.NewQuotaRepository(pool)

	// External clients.
	stripeClient := external.NewStripeClient(
		&http.Client{Timeout: 20 * time.Second},
		external.StripeClientConfig{
			SecretKey: cfg.Stripe.SecretKey.Unmask(),
			Logger:    logger,
		},
	)

	mailer := external.NewBrevoClient(
		&http.Client{Timeout: 10 * time.Second},
		external.BrevoClientConfig{
			APIKey:      cfg.Email.BrevoAPIKey.Unmask(),
			SenderName:  cfg.Email.SenderName,
			SenderEmail: cfg.Email.SenderEmail,
			Logger:      logger,
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Storage.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Storage.EndpointURL)
	}
	documentStore := external.NewS3Client(awsCfg, external.S3ClientConfig{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		Logger:        logger,
	})

	docusealClient := external.NewDocuSealClient(external.DocuSealConfig{
		APIKey:           cfg.DocuSeal.APIKey,
		IntegrationEmail: cfg.DocuSeal.IntegrationEmail,
		TokenTTL:         cfg.DocuSeal.TokenTTL,
	}, types.RealClock{})

	// Domain services.
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, types.RealClock{})

	authService := auth.NewAuthService(auth.AuthServiceConfig{
		Users:  userRepo,
		Mailer: mailer,
		Tokens: tokens,
		Logger: logger,
	})

	admissionService := cases.NewAdmissionService(
		cases.NewStore(pool),
		caseRepo,
		types.RealClock{},
		logger,
	)

	paymentService := billing.NewPaymentService(
		stripeClient,
		billing.NewStore(pool),
		types.RealClock{},
		logger,
	)

	// HTTP chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Authenticator = tokens
	srv.HealthProbes = []core.HealthProbe{&databaseProbe{pool: pool}}

	for _, h := range []routeRegistrar{
		handlers.NewAuthHandler(authService, srv.Validator, logger),
		handlers.NewUserHandler(userRepo, authService, srv.Validator, logger),
		handlers.NewCaseHandler(admissionService, caseRepo, quotaRepo, srv.Validator, logger),
		handlers.NewPaymentHandler(paymentService, cfg.Stripe.CaseSlotPriceCents, srv.Validator, logger),
		handlers.NewTaskHandler(taskRepo, caseRepo, srv.Validator, logger),
		handlers.NewLienOfferHandler(lienRepo, caseRepo, srv.Validator, logger),
		handlers.NewTreatmentHandler(treatmentRepo, caseRepo, srv.Validator, logger),
		handlers.NewInvitationHandler(invitationRepo, mailer, cfg.Server.FrontendURL, srv.Validator, logger),
		handlers.NewIntakeHandler(intakeRepo, documentStore, cfg.Security.MaxBodyBytes, srv.Validator, logger),
		handlers.NewArchiveHandler(archiveRepo, caseRepo, srv.Validator, logger),
		handlers.NewDocuSealHandler(docusealClient, srv.Validator, logger),
	} {
		srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, h.RegisterRoutes)
	}

	srv.MountRoutes()

	return serveHTTP(srv, cfg, logger)
}

// secretProvider returns the SSM-backed secret provider for deployed
// environments. Local development reads plain environment variables only.
func secretProvider() config.SecretProvider {
	if os.Getenv("APP_ENV") == "local" {
		return nil
	}
	return config.NewSSMProvider(os.Getenv("AWS_REGION"))
}

// newPool builds the pgx connection pool from the database configuration.
func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// serveHTTP runs the server with graceful shutdown on SIGINT/SIGTERM.
func serveHTTP(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// databaseProbe reports PostgreSQL connectivity for GET /health.
type databaseProbe struct {
	pool *pgxpool.Pool
}

func (p *databaseProbe) Name() string { return "database" }

func (p *databaseProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
