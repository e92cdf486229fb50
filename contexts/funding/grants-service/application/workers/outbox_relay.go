package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "ensgrants/contexts/funding/grants-service/application"
	"ensgrants/contexts/funding/grants-service/ports"
)

const defaultRelayBatchSize = 100

// OutboxRelay publishes pending round and grant events to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce drains one batch. The first failing row stops the batch so that
// events are published in outbox order.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultRelayBatchSize
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("grants outbox list failed",
			"event", "grants_outbox_list_failed",
			"module", "funding/grants-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("grants outbox decode failed",
				"event", "grants_outbox_decode_failed",
				"module", "funding/grants-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}

		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("grants outbox publish failed",
				"event", "grants_outbox_publish_failed",
				"module", "funding/grants-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", event.EventType,
				"topic", topic,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
			logger.Error("grants outbox mark published failed",
				"event", "grants_outbox_mark_published_failed",
				"module", "funding/grants-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	if published > 0 {
		logger.Info("grants outbox relay cycle completed",
			"event", "grants_outbox_relay_completed",
			"module", "funding/grants-service",
			"layer", "worker",
			"published_count", published,
		)
	}
	return published, nil
}

// Run polls the outbox until ctx is cancelled.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			// Failed rows stay pending and are retried on the next tick.
			application.ResolveLogger(r.Logger).Warn("grants outbox relay cycle failed",
				"event", "grants_outbox_relay_cycle_failed",
				"module", "funding/grants-service",
				"layer", "worker",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
