// Package bootstrap holds the start-up steps shared by all binaries.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/config"
	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/logging"
	"github.com/a1dsv/NOVA-sub002/internal/persistence/memory"
	"github.com/a1dsv/NOVA-sub002/internal/persistence/postgres"
	"github.com/a1dsv/NOVA-sub002/internal/telemetry/tracing"
)

// ErrPostgresRequired is returned by binaries that cannot run on the in-memory store.
var ErrPostgresRequired = errors.New("POSTGRES_URL is required")

// Setup loads configuration and configures logging and tracing.
// The returned func flushes pending spans.
func Setup(service string) (config.Config, func(context.Context) error, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	shutdown, err := tracing.Setup(cfg.TracingEnabled, service, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	log.WithField("service", service).Info("configuration loaded")
	return cfg, shutdown, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Store is the entity store selected by configuration. Pool is nil for the in-memory store.
type Store struct {
	Repo domain.Repository
	Pool *pgxpool.Pool
}

// Close releases the pool, if any.
func (s Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStore connects to Postgres, or falls back to memory when no URL is configured.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	if cfg.PostgresURL == "" {
		log.Warn("POSTGRES_URL not set, using in-memory store")
		return Store{Repo: memory.NewRepository()}, nil
	}
	return OpenDurableStore(ctx, cfg)
}

// OpenDurableStore opens the Postgres backed store. Processes that only see
// data written by other processes use it instead of OpenStore.
func OpenDurableStore(ctx context.Context, cfg config.Config) (Store, error) {
	pool, err := OpenPool(ctx, cfg)
	if err != nil {
		return Store{}, err
	}
	return Store{Repo: postgres.NewRepository(pool), Pool: pool}, nil
}

// OpenPool opens the Postgres pool and exports its stats to Prometheus.
func OpenPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresURL == "" {
		return nil, ErrPostgresRequired
	}
	pool, err := postgres.NewPool(ctx, cfg.PostgresURL, postgres.PoolOptions{
		MaxConns:       cfg.PostgresMaxConns,
		TracingEnabled: cfg.TracingEnabled,
	})
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}
	collector := pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": pool.Config().ConnConfig.Database})
	if err := prometheus.Register(collector); err != nil {
		log.Warnf("register pool collector: %s", err)
	}
	return pool, nil
}

// ServeMetrics exposes /metrics on addr in the background.
func ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server error: %s", err)
		}
	}()
	return srv
}
