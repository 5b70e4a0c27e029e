package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quhixcal/quhixcal/internal/config"
	"github.com/quhixcal/quhixcal/internal/database"
	"github.com/quhixcal/quhixcal/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
	close  func()
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	repo, closeStorage, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	application := NewApplicationWithRepository(cfg, repo)
	application.close = closeStorage
	return application, nil
}

// NewApplicationWithRepository builds the router and server around an already opened repository.
func NewApplicationWithRepository(cfg config.Application, repo event.EventRepository) *Application {
	r := mux.NewRouter()

	deps := BuildDependencies(repo, cfg)

	SetupMiddleware(r)

	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, close: func() {}}
}

func openRepository(cfg config.Application) (event.EventRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageBolt:
		db, err := database.OpenBolt(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := event.NewBoltEventRepo(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	case config.StoragePostgres, "":
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, nil, err
		}
		pool, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return event.NewEventRepo(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q (expected %s or %s)", cfg.Storage.Driver, config.StoragePostgres, config.StorageBolt)
}

// Handler exposes the router, mostly for tests.
func (a *Application) Handler() http.Handler {
	return a.router
}

// Run starts the HTTP server and blocks until ctx is done, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (storage: %s)", a.srv.Addr, a.cfg.Storage.Driver)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
