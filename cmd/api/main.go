package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/handlers"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug || cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	defer zapLog.Sync()

	// Load model artifacts once; they are shared read-only by every request.
	model, loadErr := services.LoadModel(cfg.Model.ArtifactDir)
	if loadErr != nil {
		if cfg.Model.Required {
			zapLog.Fatal("failed to load model artifacts",
				zap.String("dir", cfg.Model.ArtifactDir),
				zap.Error(loadErr))
		}
		zapLog.Error("model artifacts not loaded, serving 503",
			zap.String("dir", cfg.Model.ArtifactDir),
			zap.Error(loadErr))
	} else {
		info := model.Info()
		zapLog.Info("model loaded",
			zap.String("dir", cfg.Model.ArtifactDir),
			zap.String("version", info.Version),
			zap.Int("categories", info.Categories))
	}

	// Initialize services
	extractor := services.NewTextExtractor(zapLog)
	uploads := services.NewUploadService(cfg.Server.BodyLimit)
	pipeline, err := services.NewPipeline(model, extractor, services.PipelineConfig{
		Concurrency: cfg.Pipeline.Concurrency,
		Timeout:     cfg.Pipeline.RequestTimeout,
		Archive: services.ArchiveLimits{
			MaxEntries:    cfg.Archive.MaxEntries,
			MaxTotalBytes: cfg.Archive.MaxTotalBytes,
			MaxDepth:      cfg.Archive.MaxDepth,
		},
	}, zapLog)
	if err != nil {
		zapLog.Fatal("failed to initialize pipeline", zap.Error(err))
	}

	// Initialize handlers
	classifyHandler := handlers.NewClassifyHandler(pipeline, uploads, cfg.Pipeline.DefaultTopK, zapLog)
	modelHandler := handlers.NewModelHandler(model, loadErr, cfg.Server.BodyLimit, cfg.Pipeline.DefaultTopK)

	app := handlers.NewApp(handlers.AppConfig{
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, model, classifyHandler, modelHandler, zapLog)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLog.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zapLog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLog.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.Int("concurrency", cfg.Pipeline.Concurrency))

	if err := app.Listen(addr); err != nil {
		zapLog.Fatal("failed to start server", zap.Error(err))
	}
}
