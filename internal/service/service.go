// Package service собирает компоненты экспортера и управляет жизненным циклом
// HTTP-сервера, включая корректное завершение работы по системным сигналам.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/levinOo/remo-exporter/internal/audit"
	"github.com/levinOo/remo-exporter/internal/config"
	"github.com/levinOo/remo-exporter/internal/echonet"
	"github.com/levinOo/remo-exporter/internal/engine"
	"github.com/levinOo/remo-exporter/internal/handler"
	"github.com/levinOo/remo-exporter/internal/logger"
	"github.com/levinOo/remo-exporter/internal/nature"
	"github.com/levinOo/remo-exporter/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// ServerComponents содержит все компоненты, необходимые для работы экспортера.
type ServerComponents struct {
	Server   *http.Server
	Engine   *engine.Engine
	Store    *repository.MemStorage
	Registry *prometheus.Registry
	logger   *zap.SugaredLogger
}

// Serve инициализирует и запускает экспортер с указанной конфигурацией.
// Блокируется до получения SIGINT/SIGTERM или ошибки сервера.
func Serve(cfg config.Config) error {
	sugar, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer sugar.Sync()

	components, err := Setup(cfg, sugar)
	if err != nil {
		return err
	}

	return runServerWithGracefulShutdown(components, cfg)
}

// Setup создаёт клиент API, хранилище, реестр, движок и маршрутизатор.
// Сервер не запускается.
func Setup(cfg config.Config, sugar *zap.SugaredLogger) (*ServerComponents, error) {
	sugar.Infow("Starting server with config",
		"address", cfg.Addr,
		"cacheInvalidationSeconds", cfg.CacheSeconds,
		"api", cfg.APIBaseURL,
		"apiTimeout", cfg.APITimeout(),
		"auditFile", cfg.AuditFile,
		"auditURL", cfg.AuditURL,
	)

	client, err := nature.NewClient(cfg.APIBaseURL, cfg.Token, cfg.APITimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	store := repository.NewMemStorage()
	if err := echonet.DefineSeries(store); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		store,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	metrics := engine.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}

	auditer := audit.NewAuditer(audit.NewLogAuditer(sugar))
	if cfg.AuditFile != "" {
		auditer.RegisterClient(audit.NewFileAuditer(cfg.AuditFile, sugar))
	}
	if cfg.AuditURL != "" {
		auditer.RegisterClient(audit.NewURLAuditer(cfg.AuditURL, audit.DefaultURLTimeout, sugar))
	}

	eng := engine.New(client, store,
		engine.WithGate(engine.NewGate(cfg.CacheWindow(), nil)),
		engine.WithMetrics(metrics),
		engine.WithObserver(auditer),
		engine.WithLogger(sugar),
	)

	router := handler.NewRouter(eng, reg, sugar)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &ServerComponents{
		Server:   srv,
		Engine:   eng,
		Store:    store,
		Registry: reg,
		logger:   sugar,
	}, nil
}

func runServerWithGracefulShutdown(components *ServerComponents, cfg config.Config) error {
	server := components.Server
	sugar := components.logger

	serverErr := make(chan error, 1)

	go func() {
		sugar.Infow("HTTP server started", "address", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			sugar.Errorw("Server error", "error", err)
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
		sugar.Infoln("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Errorw("Server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	sugar.Infoln("Server stopped gracefully")
	return nil
}
