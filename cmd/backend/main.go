package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/samber/do/v2"

	configloader "github.com/dryrunhq/dryrun/external/config"
	httpapiimpl "github.com/dryrunhq/dryrun/external/httpapi"
	llmimpl "github.com/dryrunhq/dryrun/external/llm"
	queueimpl "github.com/dryrunhq/dryrun/external/queue"
	repositoryimpl "github.com/dryrunhq/dryrun/external/repository"
	speechimpl "github.com/dryrunhq/dryrun/external/speech"
	"github.com/dryrunhq/dryrun/external/stageconfig"
	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/grading"
	"github.com/dryrunhq/dryrun/internal/interview"
	"github.com/dryrunhq/dryrun/internal/observer"
)

const httpShutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching interview service")
	run(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	stageconfig.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	llmimpl.RegisterDI(injector)
	speechimpl.RegisterDI(injector)
	queueimpl.RegisterDI(injector)
	observer.RegisterDI(injector)
	interview.RegisterDI(injector)
	grading.RegisterDI(injector)
	httpapiimpl.RegisterDI(injector)

	return injector
}

func run(cfg *config.Config, injector do.Injector) {
	engine, err := do.Invoke[*gin.Engine](injector)
	if err != nil {
		slog.Error("failed to build http router", "error", err)
		os.Exit(1)
	}
	worker, err := do.Invoke[*grading.Worker](injector)
	if err != nil {
		slog.Error("failed to build grading worker", "error", err)
		os.Exit(1)
	}
	broker, err := do.Invoke[*queueimpl.RabbitMQ](injector)
	if err != nil {
		slog.Error("failed to connect message broker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := broker.Close(); err != nil {
			slog.Error("broker close failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := &http.Server{Addr: cfg.HTTPListenAddr, Handler: engine}
	serverDone := make(chan struct{})
	go func() {
		slog.Info("startup: http server listening", "addr", cfg.HTTPListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(serverDone)
	}()

	workerDone := make(chan struct{})
	go func() {
		slog.Info("startup: grading worker consuming")
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("grading worker stopped", "error", err)
		}
		close(workerDone)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-serverDone:
	case <-workerDone:
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	<-workerDone
}
