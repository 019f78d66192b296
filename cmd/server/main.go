package main

import (
	"alcyxob/coachtrack/internal/api"
	"alcyxob/coachtrack/internal/catalog"
	"alcyxob/coachtrack/internal/config"
	"alcyxob/coachtrack/internal/jobs"
	"alcyxob/coachtrack/internal/logging"
	"alcyxob/coachtrack/internal/notify"
	"alcyxob/coachtrack/internal/repository"
	"alcyxob/coachtrack/internal/repository/memory"
	"alcyxob/coachtrack/internal/repository/mongo"
	"alcyxob/coachtrack/internal/repository/postgres"
	"alcyxob/coachtrack/internal/repository/tiered"
	"alcyxob/coachtrack/internal/service"
	"alcyxob/coachtrack/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("config load failed", "error", err)
		return 1
	}
	logging.Setup(cfg.Log.Level)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		return 1
	}

	// --- Sentry ---
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Sentry.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// --- Persistence ---
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	stores, closeStores, degraded, err := openStores(startupCtx, cfg)
	if err != nil {
		slog.Error("store setup failed", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer closeStores()

	// --- Catalog and file storage ---
	cat, err := catalog.Builtin()
	if err != nil {
		slog.Error("catalog load failed", "error", err)
		return 1
	}
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(startupCtx, cfg.S3)
		if err != nil {
			slog.Error("s3 storage init failed", "error", err)
			return 1
		}
	}
	videos := storage.NewVideoLinker(fileStorage, storage.DefaultPresignedURLExpiry)

	// --- Mail ---
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.Mail.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	}

	// --- Services ---
	workouts := service.NewWorkoutLog(stores.Collections)
	plans := service.NewPlanBook(stores.Collections)
	exerciseService := service.NewExerciseService(cat, videos)
	statsService := service.NewStatsService(stores.Clients, workouts)
	revoked := service.NewRevocationList()
	authService := service.NewAuthService(stores.Clients, stores.Invitations, revoked, service.AuthOptions{
		JWTSecret:     cfg.JWT.Secret,
		JWTExpiration: cfg.JWT.Expiration,
		DevMode:       cfg.App.DevMode,
	})
	services := api.Services{
		Auth: authService,
		Clients: service.NewClientService(stores.Clients, stores.Invitations, plans, workouts, revoked, mailer, service.WelcomeSettings{
			AppName:  cfg.Mail.AppName,
			LoginURL: cfg.Mail.LoginURL,
		}),
		Plans:     service.NewPlanService(plans, workouts, stores.Clients, exerciseService),
		Sessions:  service.NewSessionService(workouts, plans, exerciseService, statsService),
		Exercises: exerciseService,
	}

	if cfg.App.SeedTrainerEmail != "" {
		if err := authService.EnsureTrainer(startupCtx, cfg.App.SeedTrainerName, cfg.App.SeedTrainerEmail, cfg.App.SeedTrainerPassword); err != nil {
			slog.Error("trainer seed failed", "error", err)
		}
	}

	// --- Background jobs ---
	scheduler, err := jobs.NewStatsScheduler(statsService, cfg.App.StatsRefreshSpec, time.Minute)
	if err != nil {
		slog.Error("scheduler setup failed", "error", err)
		return 1
	}
	scheduler.Start()
	defer scheduler.Stop()

	// --- HTTP ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(logging.RequestLogger())
	api.SetupRoutes(router, services, api.RouteOptions{DevMode: cfg.App.DevMode, Degraded: degraded})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("server starting", "address", cfg.Server.Address, "driver", cfg.Database.Driver, "dev_mode", cfg.App.DevMode)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := serve(server, quit); err != nil {
		slog.Error("server failed", "error", err)
		exitCode = 1
	}
	slog.Info("server exiting")
	return exitCode
}

// serve runs server until quit fires or the listener fails, then shuts it
// down. The listener error is returned so the caller's deferred cleanup runs.
func serve(server *http.Server, quit <-chan os.Signal) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var failed error
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case failed = <-serverErr:
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	return failed
}

// openStores connects the configured primary store and layers the memory
// cache over it. The memory driver has no second tier.
func openStores(ctx context.Context, cfg config.Config) (repository.Stores, func(), func() bool, error) {
	cache := memory.New()
	policy := tiered.Policy{ReadFallback: cfg.Store.ReadFallback, WriteFallback: cfg.Store.WriteFallback}

	var (
		primary repository.Stores
		closeFn = func() {}
	)
	switch cfg.Database.Driver {
	case config.DriverMemory, "":
		slog.Warn("using the in-memory store, data is lost on restart")
		return cache.Stores(), closeFn, func() bool { return false }, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return repository.Stores{}, nil, nil, err
		}
		primary, err = mongo.NewStores(ctx, client.Database(cfg.Database.Name))
		if err != nil {
			_ = mongo.DisconnectDB(client)
			return repository.Stores{}, nil, nil, err
		}
		closeFn = func() {
			if err := mongo.DisconnectDB(client); err != nil {
				slog.Error("mongo disconnect failed", "error", err)
			}
		}

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return repository.Stores{}, nil, nil, err
		}
		adapter := postgres.New(pool)
		if err := adapter.EnsureSchema(ctx); err != nil {
			pool.Close()
			return repository.Stores{}, nil, nil, err
		}
		primary = adapter.Stores()
		closeFn = pool.Close

	default:
		return repository.Stores{}, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	store := tiered.New(primary, cache, policy)
	if err := store.Warm(ctx); err != nil {
		slog.Warn("cache warm-up failed", "error", err)
	}
	slog.Info("store ready", "driver", cfg.Database.Driver, "read_fallback", policy.ReadFallback, "write_fallback", policy.WriteFallback)
	return store.Stores(), closeFn, store.Degraded, nil
}
