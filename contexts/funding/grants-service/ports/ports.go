package ports

import (
	"context"
	"time"

	contractsv1 "ensgrants/contracts/gen/events/v1"
	"ensgrants/contexts/funding/grants-service/domain/entities"
)

// Primary types of the signed payloads this module accepts.
const (
	PrimaryTypeRound = "Round"
	PrimaryTypeGrant = "Grant"
)

type CreateRoundInput struct {
	Round    entities.Round
	OutboxID string
}

type SubmitGrantInput struct {
	Grant    entities.Grant
	Scope    entities.SupersessionScope
	OutboxID string
}

type RoundRepository interface {
	// CreateRound persists the round with a store-assigned RoundID and
	// appends its round.created event to the outbox in the same write.
	CreateRound(ctx context.Context, input CreateRoundInput) (entities.Round, error)
	// FindRoundsByID returns every round stored under roundID. Callers
	// treat zero rows as not found and more than one as ambiguous.
	FindRoundsByID(ctx context.Context, roundID int64) ([]entities.Round, error)
}

type GrantRepository interface {
	// SubmitGrant marks the proposer's covered active grants deleted and
	// inserts the new grant as a single atomic step.
	SubmitGrant(ctx context.Context, input SubmitGrantInput) (entities.GrantSubmission, error)
}

// SignedPayload is the unit handed to signature recovery.
type SignedPayload struct {
	PrimaryType   string
	SchemaVersion string
	Message       map[string]any
	Signature     string
}

type SignatureVerifier interface {
	// RecoverSigner returns the lower-case address that signed payload.
	RecoverSigner(ctx context.Context, payload SignedPayload) (string, error)
}

type AuthorizationPolicy interface {
	// AuthorizeRoundCreation returns ErrUnauthorized when signer may not
	// create rounds.
	AuthorizeRoundCreation(ctx context.Context, signer string) error
	CanCreateGrant(signer string, declared string) bool
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
