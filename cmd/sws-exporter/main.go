// Command sws-exporter polls the BoM Space Weather Services API, exports the
// latest geomagnetic indices and active bulletins as Prometheus metrics, and
// optionally publishes new bulletins to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/spaceweather"
	httpadapter "github.com/couchcryptid/spaceweather/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/spaceweather/internal/adapter/kafka"
	"github.com/couchcryptid/spaceweather/internal/config"
	"github.com/couchcryptid/spaceweather/internal/observability"
	"github.com/couchcryptid/spaceweather/internal/poller"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := spaceweather.New(ctx, cfg.APIKey,
		spaceweather.WithBaseURL(cfg.BaseURL),
		spaceweather.WithLogger(logger),
		spaceweather.WithMetrics(spaceweather.NewMetrics(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		logger.Error("failed to create sws client", "error", err)
		os.Exit(1)
	}

	source := poller.NewBreakerSource(client, uint32(cfg.BreakerFailures), cfg.BreakerTimeout, logger, metrics) //nolint:gosec // validated >= 1

	// Bulletin publishing is feature-flagged via KAFKA_ENABLED.
	var (
		publisher poller.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := poller.New(source, publisher, logger, metrics, poller.Options{
		Interval: cfg.PollInterval,
		Location: cfg.KIndexLocation,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, prometheus.DefaultGatherer, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start poller.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
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

	logger.Info("shutdown complete")
}
