package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/bootstrap"
	"github.com/a1dsv/NOVA-sub002/internal/outbox"
)

const (
	defaultDLQBatchSize = 50
)

func main() {
	cfg, shutdownTracing, err := bootstrap.Setup("fitsocial-dlqmanager")
	if err != nil {
		log.Fatalf("startup: %s", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	pool, err := bootstrap.OpenPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %s", err)
	}
	defer pool.Close()

	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay)
	metricsSrv := bootstrap.ServeMetrics(cfg.MetricsAddress)

	log.Infof("DLQ manager started (interval=%s, maxRetries=%d)", cfg.DLQPollInterval, cfg.DLQMaxRetries)
	manager.Run(ctx, cfg.DLQPollInterval, defaultDLQBatchSize)
	log.Info("dlq manager received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("metrics server shutdown error: %s", err)
	}
}
