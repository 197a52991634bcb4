package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-hub/config"
	"github.com/Dosada05/tournament-hub/db"
	"github.com/Dosada05/tournament-hub/handlers"
	"github.com/Dosada05/tournament-hub/logger"
	"github.com/Dosada05/tournament-hub/realtime"
	"github.com/Dosada05/tournament-hub/repositories"
	api "github.com/Dosada05/tournament-hub/routes"
	"github.com/Dosada05/tournament-hub/scheduler"
	"github.com/Dosada05/tournament-hub/services"
	"github.com/Dosada05/tournament-hub/storage"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		logger.Logger().Error("application stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run() (err error) {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err = logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	log := logger.Logger()
	log.Info("configuration loaded", zap.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к PostgreSQL
	dbConn, err := db.Connect(cfg.DatabaseURL, connectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbConn.Close()) }()
	if err = db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database connection established")

	// Подключение к MongoDB
	mongoClient, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase, connectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		err = multierr.Append(err, mongoClient.Disconnect(closeCtx))
	}()
	log.Info("mongodb connection established", zap.String("database", cfg.MongoDatabase))

	// Redis опционален: без него события доставляются только локальному хабу.
	redisClient, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, connectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if redisClient != nil {
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		log.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	var uploader storage.FileUploader
	if cfg.BannersEnabled() {
		uploader, err = storage.NewR2Uploader(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize R2 uploader: %w", err)
		}
		log.Info("Cloudflare R2 uploader initialized")
	} else {
		log.Warn("R2 is not configured, banner uploads are disabled")
	}

	hub := realtime.NewHub(logger.WithModule("realtime"))
	var notifier services.Notifier = realtime.NewHubNotifier(hub)
	if redisClient != nil {
		notifier = realtime.NewRedisNotifier(redisClient, logger.WithModule("realtime"))
	}

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	settingsRepo := repositories.NewMongoSettingsRepository(mongoClient.Collection(repositories.SettingsCollection))
	auditRepo := repositories.NewMongoAuditRepository(mongoClient.Collection(repositories.AuditCollection))
	if err = auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure audit log indexes", zap.Error(err))
	}

	// Сервисы
	auditService := services.NewAuditService(auditRepo, logger.WithModule("audit"))
	sessionService := services.NewSessionService(userRepo, cfg.JWTSecretKey, cfg.SessionTTL, cfg.SuperAdminIDs, logger.WithModule("session"))
	userService := services.NewUserService(userRepo, sessionService, auditService)
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, uploader, auditService, notifier, logger.WithModule("tournament"))
	teamService := services.NewTeamService(teamRepo, tournamentRepo, notifier, logger.WithModule("team"))
	inviteService := services.NewInviteService(inviteRepo, teamRepo, notifier, logger.WithModule("invite"))
	settingsService := services.NewSettingsService(settingsRepo, auditService, notifier, logger.WithModule("settings"))

	healthChecks := map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(dbConn.PingContext),
		"mongodb":  mongoClient,
	}
	if redisClient != nil {
		healthChecks["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(sessionService, cfg.AuthProviderSecret),
		User:       handlers.NewUserHandler(userService, teamService, inviteService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		Invite:     handlers.NewInviteHandler(inviteService),
		Settings:   handlers.NewSettingsHandler(settingsService),
		SuperAdmin: handlers.NewSuperAdminHandler(userService, auditService),
		WebSocket:  handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger.WithModule("websocket")),
		Health:     handlers.NewHealthHandler(healthChecks, logger.WithModule("health")),
	}, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Sessions:       sessionService,
		Logger:         logger.WithModule("http"),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(logger.WithModule("http")),
	}

	sweeper := scheduler.NewStatusSweeper(tournamentService, cfg.StatusSweepSpec, logger.WithModule("scheduler"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	if redisClient != nil {
		g.Go(func() error { return startRelay(gctx, redisClient, hub) })
	}
	g.Go(func() error {
		log.Info("starting server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return multierr.Append(fmt.Errorf("graceful shutdown failed: %w", err), server.Close())
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return err
	}
	log.Info("application exited")
	return nil
}

func startRelay(ctx context.Context, client *redis.Client, hub *realtime.Hub) error {
	return realtime.NewRelay(client, hub, logger.WithModule("relay")).Run(ctx)
}
