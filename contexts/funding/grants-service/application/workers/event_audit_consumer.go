package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	contractsv1 "ensgrants/contracts/gen/events/v1"
	application "ensgrants/contexts/funding/grants-service/application"
	"ensgrants/contexts/funding/grants-service/ports"
)

const auditConsumerGroup = "grants-audit"

// EventAuditConsumer writes a structured audit line for every round and
// grant event seen on the bus.
type EventAuditConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c EventAuditConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = auditConsumerGroup
	}
	for _, topic := range []string{
		contractsv1.EventTypeRoundCreated,
		contractsv1.EventTypeGrantSubmitted,
	} {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.Handle); err != nil {
			return err
		}
	}
	return nil
}

func (c EventAuditConsumer) Handle(_ context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var data map[string]any
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.Error("grants audit event decode failed",
			"event", "grants_audit_decode_failed",
			"module", "funding/grants-service",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}

	attrs := []any{
		"event", "grants_audit_event",
		"module", "funding/grants-service",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"occurred_at", event.OccurredAt,
	}
	switch event.EventType {
	case contractsv1.EventTypeRoundCreated:
		attrs = append(attrs, "round_id", data["round_id"], "creator", data["creator"])
	case contractsv1.EventTypeGrantSubmitted:
		attrs = append(attrs,
			"grant_id", data["grant_id"],
			"round_id", data["round_id"],
			"proposer", data["proposer"],
			"superseded", data["superseded"],
		)
	}
	logger.Info("grants event audited", attrs...)
	return nil
}
