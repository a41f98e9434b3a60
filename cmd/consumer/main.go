package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/bootstrap"
	"github.com/a1dsv/NOVA-sub002/internal/consumer"
	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
	"github.com/a1dsv/NOVA-sub002/internal/persistence/postgres"
)

func main() {
	cfg, shutdownTracing, err := bootstrap.Setup("fitsocial-consumer")
	if err != nil {
		log.Fatalf("startup: %s", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	pool, err := bootstrap.OpenPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %s", err)
	}
	defer pool.Close()

	handler := consumer.NewGoalSyncHandler(goalsync.NewService(postgres.NewRepository(pool)))
	metricsSrv := bootstrap.ServeMetrics(cfg.MetricsAddress)

	var wg sync.WaitGroup
	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})

		proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(log.WithField("topic", topic)))

		wg.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()

			log.Infof("consumer started (topic=%s, group=%s)", topic, cfg.ConsumerGroupID)
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("consumer stopped with error (topic=%s): %s", topic, err)
			}
		}(topic, reader)
	}

	<-ctx.Done()
	log.Info("consumer shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("metrics server shutdown error: %s", err)
	}

	wg.Wait()
}
