package grantsservice

import (
	"log/slog"

	httpadapter "ensgrants/contexts/funding/grants-service/adapters/http"
	"ensgrants/contexts/funding/grants-service/adapters/memory"
	"ensgrants/contexts/funding/grants-service/application/commands"
	"ensgrants/contexts/funding/grants-service/application/workers"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	"ensgrants/contexts/funding/grants-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Dispatcher httpadapter.Dispatcher
	Store      *memory.Store
}

type Dependencies struct {
	Rounds      ports.RoundRepository
	Grants      ports.GrantRepository
	Signatures  ports.SignatureVerifier
	Policy      ports.AuthorizationPolicy
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Scope       entities.SupersessionScope
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createRound := commands.CreateRoundUseCase{
		Rounds:     deps.Rounds,
		Signatures: deps.Signatures,
		Policy:     deps.Policy,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	createGrant := commands.CreateGrantUseCase{
		Rounds:     deps.Rounds,
		Grants:     deps.Grants,
		Signatures: deps.Signatures,
		Policy:     deps.Policy,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Scope:      deps.Scope,
		Logger:     deps.Logger,
	}

	handler := httpadapter.Handler{
		CreateRound: createRound,
		CreateGrant: createGrant,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: handler,
		Dispatcher: httpadapter.Dispatcher{
			Handler: handler,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(
	seed []entities.Round,
	signatures ports.SignatureVerifier,
	policy ports.AuthorizationPolicy,
	scope entities.SupersessionScope,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed, nil)
	module := NewModule(Dependencies{
		Rounds:      store,
		Grants:      store,
		Signatures:  signatures,
		Policy:      policy,
		Clock:       store,
		IDGenerator: store,
		Scope:       scope,
		Logger:      logger,
	})
	module.Store = store
	return module
}

// NewOutboxRelay wires the relay worker for the given outbox and publisher.
func NewOutboxRelay(
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
	batchSize int,
	logger *slog.Logger,
) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    outbox,
		Publisher: publisher,
		Clock:     clock,
		BatchSize: batchSize,
		Logger:    logger,
	}
}
