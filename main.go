package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"keyword-report/internal/config"
	"keyword-report/internal/service"
	"keyword-report/pkg/api"
	"keyword-report/pkg/fetcher"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/notifier"
	"keyword-report/pkg/pipeline"
	"keyword-report/pkg/ranking"
	"keyword-report/pkg/storage"
)

func main() {
	// Global panic recovery to prevent application crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("🚨 CRITICAL ERROR: Application panic recovered: %v\n", r)
			os.Exit(1)
		}
	}()

	var (
		configPath = flag.String("config", os.Getenv("KEYWORD_CONFIG"), "YAML configuration file (env: KEYWORD_CONFIG)")
		dryRun     = flag.Bool("dry-run", false, "Print the report to stdout instead of sending it")
		debug      = flag.Bool("debug", os.Getenv("DEBUG") == "true", "Enable debug logging (env: DEBUG)")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}

	cfg, err := config.NewManager().Load(*configPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateCredentials(cfg, *dryRun); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		fmt.Println("Set them in the environment or the -config file.")
		fmt.Println("")
		printUsage()
		os.Exit(1)
	}

	if *debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	log := logger.GetLogger().WithField("component", "main")
	secureLog := logger.GetSecurityLogger()

	secureLog.SafeInfo("Configuration loaded", map[string]interface{}{
		"naver_base_url":     cfg.Naver.BaseURL,
		"access_license":     cfg.Naver.AccessLicense,
		"secret_key":         cfg.Naver.SecretKey,
		"customer_id":        cfg.Naver.CustomerID,
		"telegram_bot_token": cfg.Telegram.BotToken,
		"telegram_chat_id":   cfg.Telegram.ChatID,
		"categories":         len(cfg.Categories),
		"batch_size":         cfg.Pipeline.BatchSize,
		"inter_batch_delay":  cfg.Pipeline.InterBatchDelay.String(),
		"min_volume":         cfg.Pipeline.MinVolume,
		"rank_limit":         cfg.Pipeline.RankLimit,
		"ceiling":            cfg.Pipeline.Ceiling,
		"dry_run":            *dryRun,
		"storage_enabled":    cfg.Storage.Enabled,
	})

	runner, metrics, err := buildRunner(cfg, *dryRun, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create pipeline runner")
	}

	// Prevent a hung request from stalling a scheduled job forever
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.RunTimeout)
	defer cancel()

	categories := make([]pipeline.Category, 0, len(cfg.Categories))
	for _, category := range cfg.Categories {
		categories = append(categories, pipeline.Category{Name: category.Name, Seeds: category.Seeds})
	}

	var result *pipeline.RunResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic during keyword report run")
			}
		}()
		result = runner.Run(ctx, categories)
	}()

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(context.Background(), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			secureLog.SafeError("Failed to push run metrics", err, map[string]interface{}{
				"pushgateway_url": cfg.Metrics.PushgatewayURL,
			})
		}
	}

	if result == nil {
		os.Exit(1)
	}

	fmt.Printf("\n=== Keyword Report Results ===\n")
	fmt.Printf("Report ID: %s\n", result.Report.ID)
	fmt.Printf("Date: %s\n", result.Report.Date)
	for _, category := range result.Report.Categories {
		status := "✅"
		if category.Failed {
			status = "❌"
		}
		fmt.Printf("%s %s - Keywords: %d, Batches: %d ok / %d failed\n",
			status, category.Name, len(category.Entries), category.SucceededBatches, category.FailedBatches)
	}
	fmt.Printf("Dispatched: %t\n", result.Dispatched)
	fmt.Printf("Duration: %s\n", result.Duration.String())
}

func buildRunner(cfg *config.Config, dryRun bool, log *logger.Logger) (*pipeline.Runner, *pipeline.Metrics, error) {
	client, err := api.NewKeywordToolClient(api.ClientConfig{
		BaseURL:       cfg.Naver.BaseURL,
		AccessLicense: cfg.Naver.AccessLicense,
		SecretKey:     cfg.Naver.SecretKey,
		CustomerID:    cfg.Naver.CustomerID,
		Timeout:       cfg.Naver.Timeout,
	}, logger.GetLogger())
	if err != nil {
		return nil, nil, err
	}

	metrics := pipeline.NewMetrics()

	// One executor for every category so the delay applies process-wide
	executor := api.NewSequentialExecutor(cfg.Pipeline.InterBatchDelay)
	statsFetcher := fetcher.New(client, executor,
		fetcher.WithBatchSize(cfg.Pipeline.BatchSize),
		fetcher.WithObserver(metrics),
	)

	var dispatcher service.NotificationService
	if dryRun {
		dispatcher = notifier.NewWriterNotifier(os.Stdout)
	} else {
		dispatcher, err = notifier.NewTelegramNotifier(notifier.TelegramConfig{
			BaseURL:   cfg.Telegram.BaseURL,
			BotToken:  cfg.Telegram.BotToken,
			ChatID:    cfg.Telegram.ChatID,
			ParseMode: cfg.Telegram.ParseMode,
			Timeout:   cfg.Telegram.Timeout,
		}, logger.GetLogger())
		if err != nil {
			return nil, nil, err
		}
	}

	builder := pipeline.NewRunnerBuilder().
		WithFetcher(statsFetcher).
		WithNotifier(dispatcher).
		WithMetrics(metrics).
		WithThresholds(ranking.Thresholds{
			MinVolume: cfg.Pipeline.MinVolume,
			RankLimit: cfg.Pipeline.RankLimit,
			Ceiling:   cfg.Pipeline.Ceiling,
		}).
		WithLanguage(cfg.Pipeline.Language).
		WithLegend(cfg.Pipeline.Legend).
		WithTimezone(cfg.Pipeline.Timezone).
		WithDeliveryTimeout(cfg.Pipeline.DeliveryTimeout)

	// Dry runs never write to the shared history directory
	history, err := storage.OpenReportStore(storage.StorageConfig{
		DataDir:    cfg.Storage.DataDir,
		CacheSize:  cfg.Storage.CacheSize,
		MaxReports: cfg.Storage.MaxReports,
	}, cfg.Storage.Enabled && !dryRun, logger.GetLogger())
	if err != nil {
		log.WithError(err).Warn("Report history kept in memory only")
	}
	builder = builder.WithArchive(history)

	runner, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return runner, metrics, nil
}

func printUsage() {
	fmt.Println("Keyword Report - Naver keyword volume digest")
	fmt.Println("")
	fmt.Println("USAGE:")
	fmt.Println("    ./keyword-report [-config config.yaml] [OPTIONS]")
	fmt.Println("")
	fmt.Println("OPTIONS:")
	fmt.Println("    -config string    YAML configuration file (env: KEYWORD_CONFIG)")
	fmt.Println("    -dry-run          Print the report instead of sending it to Telegram")
	fmt.Println("    -debug            Enable debug logging (env: DEBUG)")
	fmt.Println("    -help             Show this help message")
	fmt.Println("")
	fmt.Println("ENVIRONMENT VARIABLES (GitHub Actions friendly):")
	fmt.Println("    NAVER_ACCESS_LICENSE   Keyword tool API key (required)")
	fmt.Println("    NAVER_SECRET_KEY       Keyword tool signing secret (required)")
	fmt.Println("    CUSTOMER_ID            Search ad customer id (required)")
	fmt.Println("    TELEGRAM_TOKEN         Bot token (required unless -dry-run)")
	fmt.Println("    CHAT_ID                Target chat (required unless -dry-run)")
	fmt.Println("    KEYWORD_PIPELINE_*     Threshold overrides, e.g. KEYWORD_PIPELINE_MIN_VOLUME=500")
	fmt.Println("")
	fmt.Println("EXAMPLES:")
	fmt.Println("    ./keyword-report -dry-run")
	fmt.Println("    ./keyword-report -config config/prod.yaml")
}
