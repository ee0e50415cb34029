// Package kafka builds the franz-go client used by the audit sink.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"channelling/internal/platform/config"
)

// New creates a client for cfg.Brokers producing to cfg.Topic by default, and
// pings the cluster so bootstrap fails fast.
func New(ctx context.Context, cfg config.Kafka) (*kgo.Client, error) {
	client, err := kgo.NewClient(Options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka %v: %w", cfg.Brokers, err)
	}
	return client, nil
}

// Options returns the client options derived from cfg.
func Options(cfg config.Kafka) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression(), kgo.NoCompression()),
		kgo.RecordRetries(5),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	return opts
}
