package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/file"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/memory"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/redis"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/aussiebroadwan/storefront/pkg/validate"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires configuration, logging, the session store and the API
// client for the command-line front end.
type Application struct {
	cfg    *Config
	logger *slog.Logger
	locale validate.Locale

	store  store.Store
	client *storefrontsdk.SDKClient

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

// Option customises an Application, mostly for tests.
type Option func(*Application)

// WithOutput redirects command output and logs.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(app *Application) {
		app.stdout = stdout
		app.stderr = stderr
	}
}

// WithStore replaces the configured session store.
func WithStore(st store.Store) Option {
	return func(app *Application) { app.store = st }
}

// WithClock replaces time.Now for dating sales.
func WithClock(now func() time.Time) Option {
	return func(app *Application) { app.now = now }
}

// New creates a new Application instance with all dependencies initialized
func New(cfg *Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		locale: validate.ParseLocale(cfg.Locale),
		stdout: io.Discard,
		stderr: io.Discard,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	app.logger = slogx.New(slogx.Config{
		Service: "storefront",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  app.stderr,
	})

	if app.store == nil {
		st, err := openStore(cfg, app.logger)
		if err != nil {
			return nil, err
		}
		app.store = st
	}

	app.client = storefrontsdk.NewSDKClient(cfg.API.BaseURL,
		storefrontsdk.WithLogger(app.logger),
		storefrontsdk.WithStore(app.store),
		storefrontsdk.WithTimeout(cfg.API.Timeout),
		storefrontsdk.WithRateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: cfg.API.RateLimit,
			Window:            time.Second,
			Burst:             cfg.API.RateBurst,
		}),
	)

	return app, nil
}

// Close releases the session store.
func (app *Application) Close() error {
	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		return err
	}
	return nil
}

// openStore builds the session store selected by cfg.Store.Driver.
func openStore(cfg *Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.NewStore(), nil

	case "file":
		st, err := file.NewStore(cfg.Store.Path, cfg.Store.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to open session file: %w", err)
		}
		logger.Debug("session store ready", "driver", "file", "path", cfg.Store.Path, "sealed", cfg.Store.Passphrase != "")
		return st, nil

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Store.Path)
		st, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := st.ApplyMigrations(); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		logger.Debug("session store ready", "driver", "sqlite", "path", cfg.Store.Path)
		return st, nil

	case "redis":
		client, err := redis.NewRedisClient(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Debug("session store ready", "driver", "redis", "addr", cfg.Store.RedisAddr)
		return redis.NewStore(client, cfg.Store.RedisPrefix), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// session resumes the stored session.
func (app *Application) session(ctx context.Context) (*storefrontsdk.Session, error) {
	return app.client.ResumeSession(ctx)
}
