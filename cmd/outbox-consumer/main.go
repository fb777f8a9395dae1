package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/infra"
	"github.com/murealm/platform/internal/repository"
)

// Standalone outbox relay. Deploy this instead of the in-process poller when
// the API servers run with KAFKA_ENABLED=false and a single relay should own
// publishing.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pollInterval := durationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	batchSize := intEnv("OUTBOX_BATCH_SIZE", 100)

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	outbox := repository.NewOutboxRepository()

	logger.Info("outbox consumer started", "poll_interval", pollInterval, "batch_size", batchSize)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox consumer stopped")
			return nil
		case <-ticker.C:
			if err := relay(ctx, pool, outbox, producer, batchSize, logger); err != nil {
				logger.Error("relay error", "error", err)
			}
		}
	}
}

func relay(
	ctx context.Context,
	pool repository.DBTX,
	outbox repository.OutboxRepository,
	producer *infra.KafkaProducer,
	batchSize int,
	logger *slog.Logger,
) error {
	drafts, err := outbox.FetchUnpublished(ctx, pool, batchSize)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(drafts))
	for _, d := range drafts {
		// Event types already carry the "game." namespace.
		topic := "murealm." + string(d.EventType)

		msg, err := json.Marshal(d)
		if err != nil {
			logger.Error("marshal event failed", "event_id", d.EventID, "error", err)
			continue
		}

		if err := producer.Publish(ctx, topic, []byte(d.PartitionKey), msg); err != nil {
			logger.Error("kafka publish failed", "event_id", d.EventID, "error", err)
			continue
		}
		published = append(published, d.EventID)
	}

	if err := outbox.MarkPublished(ctx, pool, published); err != nil {
		return err
	}
	if len(published) > 0 {
		logger.Debug("relay batch complete", "published", len(published))
	}
	return nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
