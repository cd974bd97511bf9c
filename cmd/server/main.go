// @title        Corporate Site API
// @version      1.0
// @description  News, comment moderation, audit log and analytics for the corporate site.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/metalprofile/corporate-site/docs"
	"github.com/metalprofile/corporate-site/internal/api"
	"github.com/metalprofile/corporate-site/internal/core/ports"
	"github.com/metalprofile/corporate-site/internal/core/service"
	"github.com/metalprofile/corporate-site/internal/infrastructure/config"
	"github.com/metalprofile/corporate-site/internal/infrastructure/db/mongo"
	"github.com/metalprofile/corporate-site/internal/infrastructure/db/redis"
	"github.com/metalprofile/corporate-site/internal/infrastructure/memory"
	"github.com/metalprofile/corporate-site/internal/infrastructure/queue"
	"github.com/metalprofile/corporate-site/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "corporate-site",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Redis: session snapshot and login attempts ---
	rconn, err := redis.Connect(ctx, redis.Config{
		Addr:         cfg.Redis.Addr,
		DB:           cfg.Redis.DB,
		Embedded:     cfg.Redis.Embedded,
		SnapshotPath: cfg.Redis.Snapshot,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rconn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}()
	switch {
	case rconn.Durable():
		log.Info().Str("snapshot", cfg.Redis.Snapshot).Msg("using embedded redis")
	case rconn.Embedded():
		log.Warn().Msg("using embedded redis without REDIS_SNAPSHOT; the session does not survive restarts")
	}

	// --- Mongo: optional audit mirror ---
	var (
		mirror   ports.AuditMirror
		mongoDB  *mongodriver.Database
		mirrorer *queue.Dispatcher
	)
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		sink := mongo.NewAuditSink(db)
		if err := sink.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure audit indexes")
		}
		mirrorer = queue.NewDispatcher(cfg.AuditWorkers, sink, log)
		mirrorer.Start(context.WithoutCancel(ctx))
		mirror = mirrorer
		mongoDB = db
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.AuditWorkers).Msg("audit mirror enabled")
	}

	// --- In-memory stores with demo content ---
	users := memory.NewUserRepository()
	news := memory.NewNewsRepository()
	auditLog := memory.NewAuditRepository()
	if err := memory.Seed(ctx, users, news, auditLog, service.HashSecret); err != nil {
		return err
	}

	// --- Services ---
	identity := service.NewIdentityService(
		users,
		redis.NewSessionStore(rconn.Client),
		redis.NewAttemptLimiter(rconn.Client, cfg.Login.MaxAttempts, cfg.Login.Window),
		cfg.JWTSecret,
		cfg.TokenTTL,
		log,
	)
	newsService := service.NewNewsService(news, log)
	auditService := service.NewAuditService(auditLog, mirror, log)
	statsService := service.NewStatsService(memory.SeedSiteStats())

	// No persisted session is the normal cold start; the service logs a restore.
	_, _ = identity.RestoreSession(ctx)

	e := api.NewRouter(api.Dependencies{
		Identity: identity,
		News:     newsService,
		Audit:    auditService,
		Stats:    statsService,
		Redis:    rconn.Client,
		Mongo:    mongoDB,
		TokenTTL: cfg.TokenTTL,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if mirrorer != nil {
		mirrorer.Close()
	}
	log.Info().Msg("server stopped")
	return nil
}
