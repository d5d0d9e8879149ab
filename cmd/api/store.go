package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/supportdesk/support-system/internal/core/ports"
	"github.com/supportdesk/support-system/internal/infrastructure/db/mongo"
	"github.com/supportdesk/support-system/internal/infrastructure/db/postgres"
	"github.com/supportdesk/support-system/internal/infrastructure/http/handlers"
	"github.com/supportdesk/support-system/internal/pkg/config"
)

// store bundles the repositories of the configured backend.
type store struct {
	users   ports.UserRepository
	tickets ports.TicketRepository
	checks  map[string]handlers.Check
	close   func(log zerolog.Logger)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	db, err := postgres.Open(ctx, postgres.Config{
		URL:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db, log); err != nil {
		closeDB(db, log)
		return nil, err
	}
	log.Info().Msg("postgres ready")

	return &store{
		users:   postgres.NewUserRepository(db),
		tickets: postgres.NewTicketRepository(db),
		checks:  map[string]handlers.Check{"postgres": postgres.PingCheck(db)},
		close:   func(log zerolog.Logger) { closeDB(db, log) },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		disconnect(client, log)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb ready")

	return &store{
		users:   mongo.NewUserRepository(db),
		tickets: mongo.NewTicketRepository(db),
		checks:  map[string]handlers.Check{"mongodb": mongo.PingCheck(client)},
		close:   func(log zerolog.Logger) { disconnect(client, log) },
	}, nil
}

func closeDB(db *sql.DB, log zerolog.Logger) {
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("close postgres failed")
	}
}

func disconnect(client *mongodriver.Client, log zerolog.Logger) {
	if err := client.Disconnect(context.Background()); err != nil {
		log.Error().Err(err).Msg("disconnect mongodb failed")
	}
}
