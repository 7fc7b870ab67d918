// cmd/api/config.go
// Startup configuration. Every setting is a command-line flag; the flag
// defaults are read from the environment first, so either source works.
package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aoideee/bookshelf-api/internal/auth"
)

// serverConfig holds all the values that can be tweaked at startup.
type serverConfig struct {
	port        int    // TCP port the HTTP server listens on (default 4000)
	environment string // Runtime environment: development, staging, or production
	baseURL     string // Prefix for Location headers; derived from the request when empty
	db          struct {
		dsn          string        // PostgreSQL DSN; empty selects the in-memory store
		maxOpenConns int           // Pool size limit
		maxIdleConns int           // Idle connections kept in the pool
		maxIdleTime  time.Duration // Idle connections older than this are closed
		migrate      bool          // Apply embedded migrations on startup
	}
	jwt struct {
		secret string // HS256 signing secret
	}
	limiter struct {
		rps     float64 // Tokens added per second
		burst   int     // Bucket capacity
		enabled bool
	}
}

// envDefaults mirrors serverConfig for environment parsing.
type envDefaults struct {
	Port           int           `env:"PORT" envDefault:"4000"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL        string        `env:"BASE_URL"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBMaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"15m"`
	Migrate        bool          `env:"MIGRATE" envDefault:"true"`
	JWTSecret      string        `env:"JWT_SECRET"`
	LimiterRPS     float64       `env:"LIMITER_RPS" envDefault:"2"`
	LimiterBurst   int           `env:"LIMITER_BURST" envDefault:"4"`
	LimiterEnabled bool          `env:"LIMITER_ENABLED" envDefault:"true"`
}

// loadConfig builds the configuration from environ (the process environment
// when nil) and the command-line args.
func loadConfig(args []string, environ map[string]string) (serverConfig, error) {
	var defaults envDefaults
	if err := env.ParseWithOptions(&defaults, env.Options{Environment: environ}); err != nil {
		return serverConfig{}, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	var settings serverConfig
	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&settings.port, "port", defaults.Port, "Server port")
	fs.StringVar(&settings.environment, "env", defaults.Environment, "Environment(development|staging|production)")
	fs.StringVar(&settings.baseURL, "base-url", defaults.BaseURL, "Absolute URL prefix for Location headers")

	fs.StringVar(&settings.db.dsn, "db-dsn", defaults.DatabaseDSN, "PostgreSQL DSN (empty uses the in-memory store)")
	fs.IntVar(&settings.db.maxOpenConns, "db-max-open-conns", defaults.DBMaxOpenConns, "PostgreSQL max open connections")
	fs.IntVar(&settings.db.maxIdleConns, "db-max-idle-conns", defaults.DBMaxIdleConns, "PostgreSQL max idle connections")
	fs.DurationVar(&settings.db.maxIdleTime, "db-max-idle-time", defaults.DBMaxIdleTime, "PostgreSQL max connection idle time")
	fs.BoolVar(&settings.db.migrate, "migrate", defaults.Migrate, "Apply database migrations on startup")

	fs.StringVar(&settings.jwt.secret, "jwt-secret", defaults.JWTSecret, "HS256 secret for bearer tokens")

	fs.Float64Var(&settings.limiter.rps, "limiter-rps", defaults.LimiterRPS, "Rate limiter maximum requests per second")
	fs.IntVar(&settings.limiter.burst, "limiter-burst", defaults.LimiterBurst, "Rate limiter maximum burst")
	fs.BoolVar(&settings.limiter.enabled, "limiter-enabled", defaults.LimiterEnabled, "Enable rate limiter")

	if err := fs.Parse(args); err != nil {
		return serverConfig{}, err
	}

	switch settings.environment {
	case "development", "staging", "production":
	default:
		return serverConfig{}, fmt.Errorf("config: unknown environment %q", settings.environment)
	}

	if settings.jwt.secret == "" {
		if settings.environment != "development" {
			return serverConfig{}, errors.New("config: a JWT secret is required outside development")
		}
		settings.jwt.secret = auth.DevelopmentSecret
	}

	return settings, nil
}
