// @title                       Support Dashboard API
// @version                     1.0
// @description                 Support ticketing backend with role-based access control.
// @BasePath                    /
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

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supportdesk/support-system/internal/api"
	"github.com/supportdesk/support-system/internal/api/handler"
	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/ports"
	"github.com/supportdesk/support-system/internal/core/service"
	"github.com/supportdesk/support-system/internal/infrastructure/db/redis"
	"github.com/supportdesk/support-system/internal/infrastructure/queue"
	"github.com/supportdesk/support-system/internal/pkg/config"
	"github.com/supportdesk/support-system/pkg/logger"
)

const (
	serviceName     = "support-system"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Level: "info", Service: serviceName})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("env", cfg.Env).
		Str("store", cfg.StoreDriver).
		Str("algorithm", cfg.Auth.Algorithm).
		Int("token_expire_minutes", cfg.Auth.TokenExpireMinutes).
		Msg("starting support system")

	st, err := openStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer st.close(log)

	checks := st.checks
	var idem ports.IdempotencyStore
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
	} else {
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Error().Err(cerr).Msg("close redis failed")
			}
		}()
		idem = redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		checks["redis"] = redis.PingCheck(rdb)
	}

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:    cfg.Auth.SecretKey,
		Algorithm: cfg.Auth.Algorithm,
		Lifetime:  cfg.TokenLifetime(),
	})
	if err != nil {
		return err
	}

	pool := queue.NewHashPool(cfg.Auth.HashWorkers, auth.NewBcryptHasher(cfg.Auth.BcryptCost), logger.Component("hash_pool"))

	now := time.Now
	svcLog := logger.Component("service")

	e := api.NewRouter(api.RouterConfig{
		Logger:        logger.Component("http"),
		CORSOrigins:   cfg.CORSOrigins,
		EnableMetrics: true,
		Now:           now,
		Resolver:      auth.NewResolver(codec, logger.Component("auth")),
		Auth:          service.NewAuthService(st.users, pool, codec, now, svcLog),
		Users:         service.NewUserService(st.users, pool, now, svcLog),
		Tickets:       service.NewTicketService(st.tickets, idem, now, svcLog),
		Admin:         service.NewAdminService(st.users, st.tickets, now, svcLog),
		Health:        checks,
		System: handler.SystemInfo{
			Environment:   cfg.Env,
			StoreDriver:   cfg.StoreDriver,
			Algorithm:     codec.Algorithm(),
			TokenLifetime: codec.Lifetime(),
			HashWorkers:   pool.Workers(),
			StartedAt:     now(),
		},
	})

	return serve(ctx, e, pool, ":"+cfg.Port, log)
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests. The hash pool outlives the drain and is closed last.
func serve(ctx context.Context, e *echo.Echo, pool *queue.HashPool, addr string, log zerolog.Logger) error {
	pool.Start(context.Background())
	defer pool.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
