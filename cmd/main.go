package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commercive/dashboard-api/internal/affiliate"
	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/commission"
	"github.com/commercive/dashboard-api/internal/config"
	"github.com/commercive/dashboard-api/internal/database"
	"github.com/commercive/dashboard-api/internal/inventory"
	"github.com/commercive/dashboard-api/internal/lead"
	"github.com/commercive/dashboard-api/internal/logging"
	"github.com/commercive/dashboard-api/internal/metrics"
	"github.com/commercive/dashboard-api/internal/middleware"
	"github.com/commercive/dashboard-api/internal/payout"
	"github.com/commercive/dashboard-api/internal/referral"
	"github.com/commercive/dashboard-api/internal/store"
	"github.com/commercive/dashboard-api/internal/user"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := cfg.Database
	if dbCfg.SecretID != "" {
		sm, err := database.NewSecretsClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("aws secrets client")
		}
		if dbCfg, err = database.ResolveCredentials(ctx, dbCfg, sm); err != nil {
			log.Fatal().Err(err).Msg("resolve database credentials")
		}
	}
	db, err := database.Connect(ctx, dbCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	tokens, closeTokens := tokenStore(ctx, cfg.Redis, log)
	defer closeTokens()

	m := metrics.New()
	app := build(cfg, db, tokens, m, log)

	jobs := cron.New()
	if spec := cfg.Jobs.AffiliateBackfillSchedule; spec != "" {
		if _, err := jobs.AddFunc(spec, app.backfill.RunLogged); err != nil {
			log.Fatal().Err(err).Str("schedule", spec).Msg("invalid backfill schedule")
		}
	}
	if _, err := jobs.AddFunc("@every 10m", func() { app.limiter.Cleanup(30 * time.Minute) }); err != nil {
		log.Fatal().Err(err).Msg("schedule limiter cleanup")
	}
	jobs.Start()
	if cfg.Jobs.BackfillOnStart {
		go app.backfill.RunLogged()
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Store-ID", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(middleware.RequestID(middleware.Logger(log)(middleware.Recover(app.router))))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	<-jobs.Stop().Done()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func migrate(db *gorm.DB) error {
	for _, fn := range []func(*gorm.DB) error{
		user.Migrate,
		auth.Migrate,
		affiliate.Migrate,
		commission.Migrate,
		referral.Migrate,
		lead.Migrate,
		payout.Migrate,
		store.Migrate,
		inventory.Migrate,
	} {
		if err := fn(db); err != nil {
			return err
		}
	}
	return database.CreateViews(db)
}

// tokenStore uses Redis when configured so one-time tokens survive restarts
// and are shared between replicas.
func tokenStore(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (auth.TokenStore, func()) {
	if cfg.URL == "" {
		log.Warn().Msg("REDIS_URL not set, one-time tokens are kept in memory")
		return auth.NewMemoryTokenStore(), func() {}
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Msg("ping redis")
	}
	return auth.NewRedisTokenStore(rdb), func() { _ = rdb.Close() }
}
