package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/api"
	"github.com/a1dsv/NOVA-sub002/internal/auth"
	"github.com/a1dsv/NOVA-sub002/internal/bootstrap"
	"github.com/a1dsv/NOVA-sub002/internal/cache"
	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
	"github.com/a1dsv/NOVA-sub002/internal/middleware"
	"github.com/a1dsv/NOVA-sub002/internal/notify"
	"github.com/a1dsv/NOVA-sub002/internal/outbox"
	"github.com/a1dsv/NOVA-sub002/internal/readiness"
	httptransport "github.com/a1dsv/NOVA-sub002/internal/transport/http"
)

func main() {
	cfg, shutdownTracing, err := bootstrap.Setup("fitsocial-api")
	if err != nil {
		log.Fatalf("startup: %s", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %s", err)
	}
	defer store.Close()

	var (
		mailer     domain.Mailer = notify.LogMailer{}
		dispatcher *outbox.Dispatcher
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorf("close kafka producer: %s", err)
			}
		}()
		mailer = notify.NewKafkaMailer(producer, cfg.EmailTopic)
		if store.Pool != nil {
			dispatcher = outbox.NewDispatcher(store.Pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
			go dispatcher.Start(ctx)
		}
	} else {
		log.Warn("KAFKA_BROKERS not set, emails are only logged and the outbox is not dispatched")
	}

	profiles := cache.NewProfileCache(cfg.ProfileCacheSizeMB*1024*1024, cfg.ProfileCacheTTL)
	service := domain.NewService(store.Repo,
		domain.WithMailer(mailer),
		domain.WithProfileCache(profiles),
	)

	var handlerOpts []api.Option
	if cfg.RedisAddr != "" {
		limiter, redisClient := middleware.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = redisClient.Close() }()
		handlerOpts = append(handlerOpts, api.WithRateLimiter(limiter, cfg.SearchRatePerMin))
	} else {
		log.Warn("REDIS_ADDR not set, searchUser is not rate limited")
	}

	handler := api.NewHandler(service, goalsync.NewService(store.Repo), readiness.NewService(store.Repo), handlerOpts...)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, authMiddleware.Wrap(mux))

	if err := httptransport.Serve(ctx, server, serverCfg.ShutdownTimeout); err != nil {
		log.Errorf("server error: %s", err)
	}
	cancel()

	if dispatcher != nil {
		dispatcher.Wait()
	}
	log.Info("api stopped")
}
