package ports

import (
	"encoding/json"
	"strconv"
	"time"

	contractsv1 "ensgrants/contracts/gen/events/v1"
	"ensgrants/contexts/funding/grants-service/domain/entities"
)

const (
	SourceService      = "grants-service"
	eventSchemaVersion = 1
)

func NewRoundCreatedEvent(eventID string, round entities.Round, occurredAt time.Time) (EventEnvelope, error) {
	amount := "0"
	if round.AllocationTokenAmount != nil {
		amount = round.AllocationTokenAmount.String()
	}
	return newEnvelope(eventID, contractsv1.EventTypeRoundCreated, "round_id",
		strconv.FormatInt(round.RoundID, 10), occurredAt, map[string]any{
			"round_id":                 round.RoundID,
			"creator":                  round.Creator,
			"title":                    round.Title,
			"allocation_token_address": round.AllocationTokenAddress,
			"allocation_token_amount":  amount,
			"max_winner_count":         round.MaxWinnerCount,
			"proposal_start":           round.ProposalStart,
			"proposal_end":             round.ProposalEnd,
			"voting_start":             round.VotingStart,
			"voting_end":               round.VotingEnd,
		})
}

func NewGrantSubmittedEvent(eventID string, submission entities.GrantSubmission, occurredAt time.Time) (EventEnvelope, error) {
	superseded := submission.Superseded
	if superseded == nil {
		superseded = []int64{}
	}
	grant := submission.Grant
	return newEnvelope(eventID, contractsv1.EventTypeGrantSubmitted, "proposer",
		grant.Proposer, occurredAt, map[string]any{
			"grant_id":   grant.GrantID,
			"round_id":   grant.RoundID,
			"proposer":   grant.Proposer,
			"title":      grant.Title,
			"superseded": superseded,
		})
}

func newEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (EventEnvelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    SourceService,
		TraceID:          eventID,
		SchemaVersion:    eventSchemaVersion,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             raw,
	}, nil
}

// NewOutboxMessage serializes event for the outbox table.
func NewOutboxMessage(event EventEnvelope) (OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}, nil
}
