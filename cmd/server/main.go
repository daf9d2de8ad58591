// Command server runs the proxy gateway account service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proxygate/accounts/internal/api"
	"github.com/proxygate/accounts/internal/core/credential"
	"github.com/proxygate/accounts/internal/core/service"
	"github.com/proxygate/accounts/internal/infrastructure/db/mongo"
	"github.com/proxygate/accounts/internal/infrastructure/http/handlers"
	"github.com/proxygate/accounts/internal/infrastructure/validation"
	"github.com/proxygate/accounts/internal/pkg/config"
	"github.com/proxygate/accounts/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "proxy-accounts",
		Env:     cfg.Env,
	})

	policy := cfg.Password.Policy()
	if !policy.Consistent() {
		log.Warn().
			Int("min_password_length", policy.MinPasswordLength).
			Int("rehash_min_length", policy.RehashMinLength).
			Msg("password thresholds differ; passwords between them pass one check but not the other")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongo.Disconnect(client, 5*time.Second); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Str("collection", cfg.Mongo.Collection).Msg("connected to MongoDB")

	repo := mongo.NewAccountRepository(db, cfg.Mongo.Collection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create account indexes")
	}

	guard := service.NewGuard(repo, credential.SystemRandom{}, policy, logger.Component("guard"))
	accounts := service.NewAccountService(guard, repo, validation.New(policy), logger.Component("accounts"))

	router := api.NewRouter(api.Deps{
		Accounts:   accounts,
		Policy:     policy,
		AdminRealm: cfg.AdminRealm,
		Readiness:  map[string]handlers.Pinger{"mongodb": handlers.NewMongoPinger(db)},
		Log:        logger.Component("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
