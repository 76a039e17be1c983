package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keyword-report/internal/config"
	"keyword-report/internal/handler"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/pipeline"
	"keyword-report/pkg/storage"
)

type Application struct {
	configPath string
	debug      bool
}

func main() {
	app := &Application{}

	flag.StringVar(&app.configPath, "config", os.Getenv("KEYWORD_CONFIG"), "Configuration file path")
	flag.BoolVar(&app.debug, "debug", false, "Enable debug mode")
	flag.Parse()

	if err := app.Run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func (app *Application) Run() error {
	cfg, err := config.NewManager().Load(app.configPath)
	if err != nil {
		return err
	}
	if app.debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	appLog := logger.GetLogger().WithField("component", "server")

	fileStorage, err := storage.NewFileStorage(storage.StorageConfig{
		DataDir:   cfg.Storage.DataDir,
		CacheSize: cfg.Storage.CacheSize,
	}, logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to open report history: %w", err)
	}
	archive := storage.NewReportStore(fileStorage, cfg.Storage.MaxReports)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pipeline.NewReportCollector(archive, logger.GetLogger()),
	)

	server := fiber.New(fiber.Config{
		AppName:               "keyword-report",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(appLog),
	})
	server.Use(recover.New())
	server.Use(fiberlogger.New())

	controller := handler.NewController(archive, handler.DefaultControllerConfig(), logger.GetLogger())
	controller.Register(server, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Listen(addr)
	}()

	appLog.WithFields(map[string]interface{}{
		"addr":     addr,
		"data_dir": cfg.Storage.DataDir,
	}).Info("Report viewer started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("Shutting down gracefully...")
	if err := server.ShutdownWithTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	appLog.Info("Server stopped")

	return nil
}
