// Package main is the entry point for the bookshelf API server.
// It wires together configuration, storage, token verification, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/aoideee/bookshelf-api/internal/auth"
	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/migration"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig       // Server configuration loaded from env and flags
	logger *slog.Logger       // Structured logger that writes to stdout
	models data.Models        // Book and author repositories
	tokens *auth.TokenService // Verifies bearer tokens for the admin gate
}

// main is the application entry point.
// It loads configuration, opens storage, wires up dependencies, and starts the HTTP server.
func main() {
	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	settings, err := loadConfig(os.Args[1:], nil)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if settings.jwt.secret == auth.DevelopmentSecret {
		logger.Warn("no JWT secret configured, using the development secret")
	}

	tokens, err := auth.NewTokenService(settings.jwt.secret, auth.DefaultIssuer)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	models := data.NewMemoryModels()
	if settings.db.dsn == "" {
		logger.Info("no database DSN configured, using the in-memory store")
	} else {
		// Open and verify the database connection pool.
		db, err := openDB(settings)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer db.Close() // Close the pool cleanly when main() returns.

		logger.Info("database connection pool established")

		if settings.db.migrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err = migration.RunUp(ctx, db, logger)
			cancel()
			if err != nil {
				logger.Error(err.Error())
				db.Close()
				os.Exit(1)
			}
		}

		models = data.NewModels(db)
	}

	// Bundle all shared dependencies into a single struct.
	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: models,
		tokens: tokens,
	}

	// serve blocks until the server shuts down.
	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// then pings the database with a 5-second timeout to confirm it is reachable.
// Returns the pool on success, or an error if the connection cannot be established.
func openDB(settings serverConfig) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", settings.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.db.maxOpenConns)
	db.SetMaxIdleConns(settings.db.maxIdleConns)
	db.SetConnMaxIdleTime(settings.db.maxIdleTime)

	// Create a context that cancels automatically after 5 seconds.
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
