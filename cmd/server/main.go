package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/territory_assign/backend/internal/config"
	"github.com/territory_assign/backend/internal/db"
	httpapi "github.com/territory_assign/backend/internal/http"
	"github.com/territory_assign/backend/internal/http/handlers"
	"github.com/territory_assign/backend/internal/memstore"
	"github.com/territory_assign/backend/internal/service"
)

// @title Territory Assignment API
// @version 1.0
// @description Territories, rosters, assignment rules and the client assignment engine.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "territory-assign").Str("env", cfg.Env).Logger()

	ctx := context.Background()
	var store service.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if cfg.AutoMigrate {
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				logger.Fatal().Err(err).Msg("failed to migrate db")
			}
		}
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		store = pg
	default:
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		store = memstore.New()
	}

	validate := validator.New()
	rules := service.NewRuleService(store, logger)
	h := &handlers.Handler{
		Store:       store,
		Territories: service.NewTerritoryService(store, validate, logger),
		Rules:       rules,
		Engine:      service.NewEngine(store, rules, logger),
		Stats:       service.NewStatsService(store, rules, store, nil, logger),
		Logs:        service.NewLogService(store, cfg.LogListDefaultLimit, cfg.LogListMaxLimit, logger),
		Validator:   validate,
		Logger:      logger,
	}

	router := httpapi.Router(cfg, h, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
