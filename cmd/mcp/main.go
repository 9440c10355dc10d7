package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/scoutval/internal/adapters/http/session"
	"github.com/okian/scoutval/internal/adapters/mcptools"
	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/config"
	"github.com/okian/scoutval/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		httpAddr = flag.String("http", "", "serve streamable HTTP on this address instead of stdio")
		mcpPath  = flag.String("path", "/mcp", "HTTP path for the MCP endpoint")
	)
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().Named("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	stores, err := service.OpenStores(ctx, cfg)
	if err != nil {
		log.Error(ctx, "open stores", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = stores.Close() }()

	svc := service.New(stores.Records, stores.Weights,
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithWeightSavesPerMinute(cfg.WeightSavesPerMinute),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "start service", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = svc.Stop(stopCtx)
	}()

	server := mcptools.NewServer(svc)

	if *httpAddr == "" {
		log.Info(ctx, "serving MCP over stdio")
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "mcp server exited", logger.Error(err))
		}
		return
	}

	if err := serveHTTP(ctx, cfg, server, *httpAddr, *mcpPath); err != nil {
		log.Error(ctx, "mcp http server exited", logger.Error(err))
	}
}

// serveHTTP exposes server over streamable HTTP behind the session gate.
func serveHTTP(ctx context.Context, cfg *config.Config, server *mcp.Server, addr, path string) error {
	log := logger.Get().Named("mcp")

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionAccessKey,
		session.WithTTL(cfg.SessionTTL()),
	)
	if err != nil {
		return err
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", sessions.HandleCreate)
	mux.HandleFunc("DELETE /session", sessions.HandleDelete)
	mux.Handle(path, sessions.Middleware(handler))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving MCP over HTTP", logger.String("addr", addr), logger.String("path", path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
