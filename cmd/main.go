package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/scoutval/internal/adapters/http/api"
	"github.com/okian/scoutval/internal/adapters/http/session"
	"github.com/okian/scoutval/internal/adapters/http/site"
	"github.com/okian/scoutval/internal/adapters/http/swagger"
	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/config"
	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// defaultSecret is the shipped session secret; production must override it.
const defaultSecret = "change-me"

func main() {
	// Only the custom registry is served; keep the default one empty.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// application is the wired HTTP surface and the components behind it.
type application struct {
	stores  *service.Stores
	svc     *service.Service
	handler http.Handler
}

// newApplication starts the service over stores and registers every route.
func newApplication(ctx context.Context, cfg *config.Config, stores *service.Stores) (*application, error) {
	log := logger.Get()

	svc := service.New(stores.Records, stores.Weights,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithWeightSavesPerMinute(cfg.WeightSavesPerMinute),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}

	if cfg.SessionSecret == defaultSecret {
		log.Warn(ctx, "session_secret is the shipped default; set SCOUTVAL_SESSION_SECRET")
	}
	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionAccessKey,
		session.WithTTL(cfg.SessionTTL()),
		session.WithLogger(log.Named("session")),
	)
	if err != nil {
		_ = svc.Stop(ctx)
		return nil, fmt.Errorf("session manager: %w", err)
	}

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, sessions, cfg.MaxLeaderboardLimit).Register(ctx, mux)

	return &application{stores: stores, svc: svc, handler: mux}, nil
}

// close drains the revaluation workers and closes the database.
func (a *application) close(ctx context.Context) error {
	return errors.Join(a.svc.Stop(ctx), a.stores.Close())
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	stores, err := service.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	app, err := newApplication(ctx, cfg, stores)
	if err != nil {
		_ = stores.Close()
		return err
	}

	go metrics.RunSystemCollector(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = app.close(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := app.close(shutdownCtx); err != nil {
		return fmt.Errorf("close application: %w", err)
	}

	log.Info(ctx, "server stopped")
	return nil
}
