// Command server runs the accreditation API: a role-gated dashboard backend
// tracking the phases of a university accreditation process.
//
// @title        Accreditation Phase API
// @version      1.0
// @description  Role-gated API for accreditation phase tracking.
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ssea/accreditation-api/internal/api"
	"github.com/ssea/accreditation-api/internal/core/service"
	mongodb "github.com/ssea/accreditation-api/internal/infrastructure/db/mongo"
	redisdb "github.com/ssea/accreditation-api/internal/infrastructure/db/redis"
	"github.com/ssea/accreditation-api/internal/infrastructure/queue"
	"github.com/ssea/accreditation-api/internal/infrastructure/session"
	"github.com/ssea/accreditation-api/internal/pkg/config"
	"github.com/ssea/accreditation-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	profiles := mongodb.NewProfileRepository(db)
	phases := mongodb.NewPhaseRepository(db)
	credentials := mongodb.NewCredentialRepository(db)
	auditLog := mongodb.NewAuditRepository(db)

	if err := phases.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("phase indexes failed")
	}
	if err := credentials.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("credential indexes failed")
	}
	if err := auditLog.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit indexes failed")
	}

	// --- Session store and lifecycle controller ---
	throttle := redisdb.NewLoginThrottle(rdb)
	store := session.NewStore(credentials, rdb, throttle, cfg.JWTSecret, cfg.SessionTTL, logger.Component("session"))
	resolver := service.NewIdentityResolver(profiles, log)
	controller := service.NewSessionController(store, resolver, log)
	if err := controller.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("session subscription failed")
	}
	defer controller.Close()

	// --- Services ---
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	recorder := queue.NewAuditRecorder(cfg.AuditWorkers, auditLog, logger.Component("audit"))
	recorder.Start(workerCtx)

	phaseService := service.NewPhaseService(phases, recorder, auditLog, log)
	userService := service.NewUserService(credentials, profiles, log)

	e := api.NewRouter(api.Dependencies{
		Mongo:            db,
		Redis:            rdb,
		Store:            store,
		Controller:       controller,
		Phases:           phaseService,
		Users:            userService,
		Logger:           log,
		CookieTTLSeconds: int(cfg.SessionTTL.Seconds()),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
