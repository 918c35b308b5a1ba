// @title        Storefront Client API
// @version      1.0
// @description  Local dashboard API over the storefront: session, role-selected dashboards, order notifications and the admin catalog.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/api"
	"github.com/99minutos/storefront-client/internal/core/ports"
	"github.com/99minutos/storefront-client/internal/core/service"
	mongostore "github.com/99minutos/storefront-client/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/storefront-client/internal/infrastructure/db/redis"
	"github.com/99minutos/storefront-client/internal/infrastructure/push"
	"github.com/99minutos/storefront-client/internal/infrastructure/store/file"
	"github.com/99minutos/storefront-client/internal/infrastructure/store/memory"
	"github.com/99minutos/storefront-client/internal/infrastructure/storefront"
	"github.com/99minutos/storefront-client/internal/pkg/config"
	"github.com/99minutos/storefront-client/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront-client",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront client stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, readiness, closeStore, err := openCredentialStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := storefront.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	dialer := push.NewDialer(cfg.PushBaseURL, cfg.HTTPTimeout, log)
	resolver := service.NewSessionResolver(client, cfg.ProfileTimeout, log)

	reconnect := service.ReconnectPolicy{}
	if cfg.Reconnect.MaxAttempts > 0 {
		reconnect = service.DefaultReconnectPolicy(cfg.Reconnect.MaxAttempts)
		reconnect.InitialBackoff = cfg.Reconnect.InitialBackoff
		reconnect.MaxBackoff = cfg.Reconnect.MaxBackoff
	}

	sessions := service.NewSessionController(store, client, resolver, dialer, service.ControllerOptions{
		FailurePolicy: service.FailurePolicy(cfg.FailurePolicy),
		Reconnect:     reconnect,
	}, log)
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Warn().Err(err).Msg("session teardown failed")
		}
	}()

	// A stored credential that fails to resolve leaves the session
	// unauthenticated; the server keeps running.
	if err := sessions.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("stored credential not resolved")
	}

	e := api.NewRouter(api.Dependencies{
		Sessions:  sessions,
		Catalog:   service.NewCatalogService(client, sessions, logger.Component("catalog_service")),
		Accounts:  service.NewAccountService(client, logger.Component("account_service")),
		Readiness: readiness,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("dashboard API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openCredentialStore selects the configured backend. The returned map holds
// the backends the readiness probe pings.
func openCredentialStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, map[string]ports.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Credential.Backend {
	case config.BackendMemory:
		return memory.NewCredentialStore(), nil, noop, nil

	case config.BackendFile:
		return file.NewCredentialStore(cfg.Credential.File, cfg.Credential.Passphrase, log), nil, noop, nil

	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store := redisstore.NewCredentialStore(rdb, cfg.Credential.KeyPrefix, log)
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}
		return store, map[string]ports.Pinger{"redis": store}, closeFn, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store := mongostore.NewCredentialStore(db, cfg.Credential.Slot)
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}
		return store, map[string]ports.Pinger{"mongodb": store}, closeFn, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown credential backend %q", cfg.Credential.Backend)
}
