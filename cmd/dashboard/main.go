package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/climate-dashboard/internal/adapter/gistemp"
	httpadapter "github.com/couchcryptid/climate-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/climate-dashboard/internal/config"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/observability"
	"github.com/couchcryptid/climate-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := gistemp.NewClient(cfg.DatasetURL, cfg.FetchTimeout, logger)
	transformer := pipeline.NewTransformer(domain.ReportOptions{
		Source:      client.Source(),
		PreviewRows: cfg.PreviewRows,
	}, logger)

	// Kafka publication is feature-flagged via KAFKA_BROKERS.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publication enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publication disabled")
	}

	p := pipeline.New(client, transformer, publisher, logger, metrics)

	renderer := chart.NewCachedRenderer(chart.NewRenderer(metrics), cfg.ChartCacheSize, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// A failed run is served as an error page, so it does not stop the server.
	g.Go(func() error {
		if err := p.Run(gctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if writer != nil {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
