package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"channelling/internal/audit"
	auditkafka "channelling/internal/audit/kafka"
	"channelling/internal/catalog"
	"channelling/internal/lifecycle"
	lifecyclemetrics "channelling/internal/lifecycle/metrics"
	"channelling/internal/platform/config"
	"channelling/internal/platform/database"
	"channelling/internal/platform/httpserver"
	platformkafka "channelling/internal/platform/kafka"
	"channelling/internal/platform/logger"
	"channelling/internal/platform/metrics"
	"channelling/internal/platform/middleware"
	"channelling/internal/platform/redis"
	httptransport "channelling/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, logCloser := logger.New(cfg.Log)
	defer logCloser.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	backend := catalog.Backend{Driver: cfg.Store.Driver}
	var checks []httptransport.HealthCheck

	if cfg.Store.Driver != "memory" {
		db, err := database.Open(ctx, database.Options{
			Driver:          cfg.Store.Driver,
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		closers = append(closers, db)
		if cfg.Store.Migrate {
			if err := database.Migrate(ctx, db, cfg.Store.Driver); err != nil {
				return err
			}
			log.Info("schema migrated", "driver", cfg.Store.Driver)
		}
		backend.DB = db
		checks = append(checks, httptransport.HealthCheck{Name: "store", Check: dbCheck(db)})
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		closers = append(closers, rc)
		backend.Cache = rc
		backend.CacheTTL = cfg.Redis.TTL
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: rc.Health})
		log.Info("redis cache enabled", "ttl", cfg.Redis.TTL)
	}

	publisher, closeKafka, err := newAuditPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}

	opts := []lifecycle.Option{
		lifecycle.WithLogger(log),
		lifecycle.WithAuditPublisher(publisher),
		lifecycle.WithValidator(lifecycle.NewValidator()),
	}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, lifecycle.WithMetrics(lifecyclemetrics.New(m.Registry)))
	}

	registry, err := catalog.Build(backend, log, opts...)
	if err != nil {
		return err
	}

	deps := httptransport.Deps{
		Resources:      registry.Resources,
		Logger:         log,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Auth:           cfg.Auth,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Checks:         checks,
	}
	if cfg.Auth.Mode == "jwt" {
		deps.Validator = middleware.NewHMACValidator(cfg.Auth.JWTSigningKey, cfg.Auth.JWTClaim)
	}
	srv := httpserver.New(cfg.HTTP, httptransport.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting channelling",
			"addr", cfg.HTTP.Addr,
			"store", cfg.Store.Driver,
			"auth", cfg.Auth.Mode,
			"kinds", len(registry.Resources),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// in-flight requests are done; flush what they emitted
		publisher.Close()
		closeKafka()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newAuditPublisher logs every event and, when brokers are configured, also
// produces it to Kafka. The returned func closes the Kafka client and must run
// after the publisher is closed.
func newAuditPublisher(ctx context.Context, cfg config.Kafka, log *slog.Logger) (*audit.Publisher, func(), error) {
	var sink audit.Sink = audit.NewLogSink(log)
	closeFn := func() {}
	if cfg.Enabled() {
		client, err := platformkafka.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := auditkafka.EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions, cfg.Replication); err != nil {
			client.Close()
			return nil, nil, err
		}
		sink = audit.FanOut{sink, auditkafka.NewSink(client, cfg.Topic)}
		closeFn = client.Close
		log.Info("kafka audit sink enabled", "topic", cfg.Topic, "brokers", cfg.Brokers)
	}
	return audit.NewPublisher(sink,
		audit.WithAsyncBuffer(cfg.AsyncBuffer),
		audit.WithLogger(log),
	), closeFn, nil
}

func dbCheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}
