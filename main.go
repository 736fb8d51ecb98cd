package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"report-pipeline/config"
	"report-pipeline/driver"
	"report-pipeline/handler"
	"report-pipeline/logger"
	"report-pipeline/orchestrator"
	"report-pipeline/repository"
	"report-pipeline/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.Init(logger.LoadConfigFromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbPool, err := driver.InitDB(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	reportRepo := repository.NewReportRepository(dbPool, log)
	articleRepo := repository.NewArticleRepository(dbPool, log)

	seenCache := repository.NewNoopSeenSourceCache()

	if cfg.Cache.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		defer redisClient.Close() //nolint:errcheck // shutdown path

		seenCache = repository.NewSeenSourceCache(redisClient, cfg.Cache.TTL, log)
	}

	editor := driver.NewEditorClient(cfg.Editor, log)
	newswire := driver.NewNewswireClient(cfg.Newswire, log)

	ingestion := service.NewIngestionService(
		reportRepo, seenCache, newswire, editor, cfg.Pipeline.DailyTarget, log)
	classification := service.NewClassificationService(
		reportRepo, editor, cfg.Pipeline.ClassifyBatchSize, log)
	composition := service.NewCompositionService(
		reportRepo, articleRepo, editor, cfg.Pipeline.ComposeBatchSize, log)

	pipeline := handler.NewPipelineHandler(
		ingestion, classification, composition, cfg.Pipeline.Locales, log)

	runner := orchestrator.NewPipelineRunner(orchestrator.RunnerConfig{
		Name:           "report-pipeline",
		Interval:       cfg.Pipeline.Interval,
		RunImmediately: cfg.Pipeline.RunImmediately,
	}, pipeline.RunPipeline, log)

	runner.Start(ctx)

	reportHandler := handler.NewReportHandler(reportRepo, log)

	e := handler.NewHTTPServer(runner, reportHandler, log)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("starting HTTP server", "addr", addr)

		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}

	runner.Stop()
	log.Info("shutdown complete")
}
