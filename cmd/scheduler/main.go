package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/bootstrap"
	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
	"github.com/a1dsv/NOVA-sub002/internal/scheduler"
)

func main() {
	cfg, shutdownTracing, err := bootstrap.Setup("fitsocial-scheduler")
	if err != nil {
		log.Fatalf("startup: %s", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	store, err := bootstrap.OpenDurableStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %s", err)
	}
	defer store.Close()

	metricsSrv := bootstrap.ServeMetrics(cfg.MetricsAddress)

	s := scheduler.New(
		scheduler.CleanupJob(domain.NewService(store.Repo), cfg.CleanupInterval),
		scheduler.GoalSyncJob(goalsync.NewService(store.Repo), cfg.GoalSyncInterval),
	)
	log.Infof("scheduler started (cleanup=%s, goal_sync=%s)", cfg.CleanupInterval, cfg.GoalSyncInterval)
	s.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("metrics server shutdown error: %s", err)
	}
	log.Info("scheduler stopped")
}
