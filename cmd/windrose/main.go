package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/brisalabs/windrose-service/internal/adapter/http"
	kafkaadapter "github.com/brisalabs/windrose-service/internal/adapter/kafka"
	"github.com/brisalabs/windrose-service/internal/adapter/render"
	"github.com/brisalabs/windrose-service/internal/config"
	"github.com/brisalabs/windrose-service/internal/observability"
	"github.com/brisalabs/windrose-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Summary publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher pipeline.SummaryPublisher
	var publisherCloser *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisherCloser = kafkaadapter.NewPublisher(cfg, logger)
		publisher = publisherCloser
		logger.Info("summary publishing enabled", "topic", cfg.KafkaSummaryTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("summary publishing disabled")
	}

	renderer := render.New(cfg.RosePanelSizePx, logger)
	p := pipeline.New(renderer, publisher, logger, metrics, cfg.RoseSectors, cfg.RoseSpeedBins)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, cfg.MaxUploadFiles, cfg.MaxUploadBytes)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Verify the raster stack before accepting traffic.
	if err := p.WarmUp(ctx); err != nil {
		logger.Error("warm-up render failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
