// Package main is the entry point for the bookshelf API server.
// It wires together configuration, the book store, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aoideee/bookshelf-api/internal/config"
	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/logging"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs and the healthcheck.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config *config.Config // Layered configuration (file, env, flags)
	logger *slog.Logger   // Structured logger that writes to stdout
	models data.Models    // Book operations over the configured store
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(cfg.Log, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// run opens the configured store, wires up dependencies and serves until shutdown.
func run(cfg *config.Config, logger *slog.Logger) error {
	var store data.Store

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close() // Close the pool cleanly when run() returns.

		logger.Info("database connection pool established")

		pg := data.NewPostgresStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	default:
		store = data.NewMemoryStore()
	}

	app := &applicationDependencies{
		config: cfg,
		logger: logger,
		models: data.NewModels(store, logger),
	}

	return app.serve()
}

// openDB opens a PostgreSQL connection pool using the DSN stored in cfg,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(cfg *config.Config) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DB.MaxIdleTimeDuration())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
