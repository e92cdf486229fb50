package memory

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"ensgrants/contexts/funding/grants-service/domain/entities"
	"ensgrants/contexts/funding/grants-service/ports"

	"github.com/google/uuid"
)

type outboxRow struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

// Store keeps rounds, grants and the event outbox in process. Round rows are
// a slice rather than a map so the duplicate-id edge case can be seeded.
type Store struct {
	mu sync.RWMutex

	rounds      []entities.Round
	grants      map[int64]entities.Grant
	outbox      []outboxRow
	nextRoundID int64
	nextGrantID int64
}

func NewStore(seedRounds []entities.Round, seedGrants []entities.Grant) *Store {
	store := &Store{
		rounds:      make([]entities.Round, 0, len(seedRounds)),
		grants:      make(map[int64]entities.Grant, len(seedGrants)),
		outbox:      make([]outboxRow, 0),
		nextRoundID: 1,
		nextGrantID: 1,
	}
	for _, round := range seedRounds {
		store.rounds = append(store.rounds, cloneRound(round))
		if round.RoundID >= store.nextRoundID {
			store.nextRoundID = round.RoundID + 1
		}
	}
	for _, grant := range seedGrants {
		store.grants[grant.GrantID] = grant
		if grant.GrantID >= store.nextGrantID {
			store.nextGrantID = grant.GrantID + 1
		}
	}
	return store
}

func (s *Store) CreateRound(_ context.Context, input ports.CreateRoundInput) (entities.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round := cloneRound(input.Round)
	round.RoundID = s.nextRoundID

	event, err := ports.NewRoundCreatedEvent(input.OutboxID, round, round.CreatedAt)
	if err != nil {
		return entities.Round{}, err
	}
	message, err := ports.NewOutboxMessage(event)
	if err != nil {
		return entities.Round{}, err
	}

	s.nextRoundID++
	s.rounds = append(s.rounds, round)
	s.outbox = append(s.outbox, outboxRow{message: message})
	return cloneRound(round), nil
}

func (s *Store) FindRoundsByID(_ context.Context, roundID int64) ([]entities.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]entities.Round, 0, 1)
	for _, round := range s.rounds {
		if round.RoundID == roundID {
			matches = append(matches, cloneRound(round))
		}
	}
	return matches, nil
}

func (s *Store) SubmitGrant(_ context.Context, input ports.SubmitGrantInput) (entities.GrantSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := input.Grant
	incoming.Proposer = strings.ToLower(incoming.Proposer)
	incoming.GrantID = s.nextGrantID
	incoming.Deleted = false
	incoming.SupersededAt = nil

	superseded := make([]int64, 0)
	for id, existing := range s.grants {
		if input.Scope.Covers(existing, incoming) {
			superseded = append(superseded, id)
		}
	}
	sort.Slice(superseded, func(i, j int) bool { return superseded[i] < superseded[j] })

	submission := entities.GrantSubmission{Grant: incoming, Superseded: superseded}
	event, err := ports.NewGrantSubmittedEvent(input.OutboxID, submission, incoming.CreatedAt)
	if err != nil {
		return entities.GrantSubmission{}, err
	}
	message, err := ports.NewOutboxMessage(event)
	if err != nil {
		return entities.GrantSubmission{}, err
	}

	supersededAt := incoming.CreatedAt
	for _, id := range superseded {
		existing := s.grants[id]
		existing.Deleted = true
		existing.SupersededAt = &supersededAt
		s.grants[id] = existing
	}
	s.nextGrantID++
	s.grants[incoming.GrantID] = incoming
	s.outbox = append(s.outbox, outboxRow{message: message})
	return submission, nil
}

// Grants returns every stored grant ordered by id, deleted ones included.
func (s *Store) Grants() []entities.Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Grant, 0, len(s.grants))
	for _, grant := range s.grants {
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].GrantID < items[j].GrantID })
	return items
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.publishedAt != nil {
			continue
		}
		items = append(items, row.message)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			at := publishedAt.UTC()
			s.outbox[i].publishedAt = &at
			return nil
		}
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneRound(round entities.Round) entities.Round {
	if round.AllocationTokenAmount != nil {
		round.AllocationTokenAmount = new(big.Int).Set(round.AllocationTokenAmount)
	}
	return round
}

var (
	_ ports.RoundRepository  = (*Store)(nil)
	_ ports.GrantRepository  = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
