// Package app wires configuration, storage, sessions and routes into a
// runnable HTTP server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/phone-storefront/app/internal/auth"
	"github.com/phone-storefront/app/internal/cart"
	"github.com/phone-storefront/app/internal/catalog"
	"github.com/phone-storefront/app/internal/config"
	"github.com/phone-storefront/app/internal/database"
	"github.com/phone-storefront/app/internal/handlers"
	"github.com/phone-storefront/app/internal/redis"
	"github.com/phone-storefront/app/internal/session"
	"github.com/phone-storefront/app/web"
)

const sessionCleanupInterval = 5 * time.Minute

type App struct {
	cfg *config.Config
	log logr.Logger

	db          *sql.DB
	redis       *redis.Client
	memSessions *session.MemoryStore

	server *http.Server
}

// New opens the database, applies migrations, seeds the catalog and builds
// the HTTP server. Anything opened before a failure is closed again.
func New(ctx context.Context, cfg *config.Config, logger logr.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: logger}
	defer func() {
		if err != nil {
			a.closeResources()
		}
	}()

	a.db, err = database.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	logger.V(1).Info("database ready", "dsn", cfg.DatabaseDSN)

	store := database.NewStore(a.db)
	inserted, err := database.SeedProducts(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if inserted > 0 {
		logger.Info("seeded product catalog", "products", inserted)
	}

	sessionStore, err := a.newSessionStore(ctx)
	if err != nil {
		return nil, err
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	templates, err := handlers.LoadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}

	catalogSvc := catalog.NewService(store)
	h := handlers.New(handlers.Deps{
		Auth:      auth.NewService(store, auth.BcryptHasher{}, logger.WithName("auth")),
		Catalog:   catalogSvc,
		Cart:      cart.NewService(catalogSvc),
		Sessions:  session.NewManager(sessionStore, cfg.SessionTTL, session.CookieOptions{Secure: cfg.CookieSecure}, logger.WithName("session")),
		Templates: templates,
		Static:    http.FS(staticFS),
		Logger:    logger.WithName("http"),
	})

	a.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *App) newSessionStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := redis.New(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("redis connect %s: %w", a.cfg.RedisAddr, err)
		}
		a.redis = client
		a.log.V(1).Info("using redis session store", "addr", a.cfg.RedisAddr)
		return session.NewRedisStore(client), nil
	default:
		a.memSessions = session.NewMemoryStore(a.log.WithName("session"), sessionCleanupInterval)
		a.log.V(1).Info("using in-memory session store")
		return a.memSessions, nil
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		a.closeResources()
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, l)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, l net.Listener) error {
	a.log.Info("server starting", "addr", l.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Serve(l)
	}()

	select {
	case err := <-errCh:
		a.closeResources()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the database and session store.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("server shutting down")
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.closeResources())
}

func (a *App) closeResources() error {
	var errs []error
	if a.memSessions != nil {
		errs = append(errs, a.memSessions.Close())
		a.memSessions = nil
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	return errors.Join(errs...)
}
