package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"ensgrants/contexts/funding/grants-service/domain/entities"
	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	"ensgrants/contexts/funding/grants-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateRound(ctx context.Context, input ports.CreateRoundInput) (entities.Round, error) {
	row := roundModelFromEntity(input.Round)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		created := row.toEntity()
		event, err := ports.NewRoundCreatedEvent(input.OutboxID, created, created.CreatedAt)
		if err != nil {
			return err
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	if err != nil {
		return entities.Round{}, r.logError("grants_repo_create_round_failed", err,
			"creator", input.Round.Creator,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindRoundsByID(ctx context.Context, roundID int64) ([]entities.Round, error) {
	var rows []roundModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", roundID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("grants_repo_find_rounds_failed", err, "round_id", roundID)
	}

	items := make([]entities.Round, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// SubmitGrant serializes submissions that can supersede each other with a
// transaction-scoped advisory lock keyed like the supersession scope, then
// supersedes and inserts inside the same transaction.
// The partial unique index on active (round_id, proposer) backs this up.
func (r *Repository) SubmitGrant(ctx context.Context, input ports.SubmitGrantInput) (entities.GrantSubmission, error) {
	proposer := strings.ToLower(strings.TrimSpace(input.Grant.Proposer))
	row := grantModelFromEntity(input.Grant)
	row.Proposer = proposer

	var submission entities.GrantSubmission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", grantLockKey(input.Scope, proposer, row.RoundID)).Error; err != nil {
			return err
		}

		query := tx.Model(&grantModel{}).Where("proposer = ? AND deleted = ?", proposer, false)
		if input.Scope != entities.SupersessionScopeProposer {
			query = query.Where("round_id = ?", row.RoundID)
		}
		superseded := make([]int64, 0)
		if err := query.Order("id ASC").Pluck("id", &superseded).Error; err != nil {
			return err
		}
		if len(superseded) > 0 {
			if err := tx.Model(&grantModel{}).
				Where("id IN ?", superseded).
				Updates(map[string]any{
					"deleted":       true,
					"superseded_at": row.CreatedAt,
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrGrantConflict
			}
			return err
		}

		submission = entities.GrantSubmission{
			Grant:      row.toEntity(),
			Superseded: superseded,
		}
		event, err := ports.NewGrantSubmittedEvent(input.OutboxID, submission, row.CreatedAt)
		if err != nil {
			return err
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	if err != nil {
		return entities.GrantSubmission{}, r.logError("grants_repo_submit_grant_failed", err,
			"round_id", input.Grant.RoundID,
			"proposer", proposer,
		)
	}
	return submission, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("grants_repo_list_outbox_failed", err)
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("grants_repo_mark_outbox_failed", result.Error, "outbox_id", outboxID)
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

// grantLockKey is (scope, proposer) under the proposer scope and
// (scope, proposer, round) otherwise.
func grantLockKey(scope entities.SupersessionScope, proposer string, roundID int64) int64 {
	key := "grants:proposer:" + proposer
	if scope != entities.SupersessionScopeProposer {
		key = fmt.Sprintf("grants:round:%d:%s", roundID, proposer)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "funding/grants-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("grants repository operation failed", fields...)
	return err
}

type roundModel struct {
	ID                     int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title                  string    `gorm:"column:title;type:text"`
	Description            string    `gorm:"column:description;type:text"`
	Creator                string    `gorm:"column:creator;type:varchar(42);index"`
	AllocationTokenAddress string    `gorm:"column:allocation_token_address;type:varchar(42)"`
	AllocationTokenAmount  string    `gorm:"column:allocation_token_amount;type:numeric(78,0)"`
	MaxWinnerCount         int64     `gorm:"column:max_winner_count"`
	ProposalStart          int64     `gorm:"column:proposal_start"`
	ProposalEnd            int64     `gorm:"column:proposal_end"`
	VotingStart            int64     `gorm:"column:voting_start"`
	VotingEnd              int64     `gorm:"column:voting_end"`
	CreatedAt              time.Time `gorm:"column:created_at"`
}

func (roundModel) TableName() string {
	return "rounds"
}

func roundModelFromEntity(item entities.Round) roundModel {
	amount := "0"
	if item.AllocationTokenAmount != nil {
		amount = item.AllocationTokenAmount.String()
	}
	return roundModel{
		ID:                     item.RoundID,
		Title:                  item.Title,
		Description:            item.Description,
		Creator:                strings.ToLower(item.Creator),
		AllocationTokenAddress: strings.ToLower(item.AllocationTokenAddress),
		AllocationTokenAmount:  amount,
		MaxWinnerCount:         item.MaxWinnerCount,
		ProposalStart:          item.ProposalStart,
		ProposalEnd:            item.ProposalEnd,
		VotingStart:            item.VotingStart,
		VotingEnd:              item.VotingEnd,
		CreatedAt:              item.CreatedAt.UTC(),
	}
}

func (m roundModel) toEntity() entities.Round {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(m.AllocationTokenAmount), 10)
	if !ok {
		amount = nil
	}
	return entities.Round{
		RoundID:                m.ID,
		Title:                  m.Title,
		Description:            m.Description,
		Creator:                m.Creator,
		AllocationTokenAddress: m.AllocationTokenAddress,
		AllocationTokenAmount:  amount,
		MaxWinnerCount:         m.MaxWinnerCount,
		ProposalStart:          m.ProposalStart,
		ProposalEnd:            m.ProposalEnd,
		VotingStart:            m.VotingStart,
		VotingEnd:              m.VotingEnd,
		CreatedAt:              m.CreatedAt.UTC(),
	}
}

type grantModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RoundID      int64      `gorm:"column:round_id;index"`
	Proposer     string     `gorm:"column:proposer;type:varchar(42);index"`
	Title        string     `gorm:"column:title;type:text"`
	Description  string     `gorm:"column:description;type:text"`
	FullText     string     `gorm:"column:full_text;type:text"`
	Deleted      bool       `gorm:"column:deleted;not null"`
	SupersededAt *time.Time `gorm:"column:superseded_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (grantModel) TableName() string {
	return "grants"
}

func grantModelFromEntity(item entities.Grant) grantModel {
	return grantModel{
		ID:           item.GrantID,
		RoundID:      item.RoundID,
		Proposer:     strings.ToLower(item.Proposer),
		Title:        item.Title,
		Description:  item.Description,
		FullText:     item.FullText,
		Deleted:      item.Deleted,
		SupersededAt: item.SupersededAt,
		CreatedAt:    item.CreatedAt.UTC(),
	}
}

func (m grantModel) toEntity() entities.Grant {
	return entities.Grant{
		GrantID:      m.ID,
		RoundID:      m.RoundID,
		Proposer:     m.Proposer,
		Title:        m.Title,
		Description:  m.Description,
		FullText:     m.FullText,
		Deleted:      m.Deleted,
		SupersededAt: m.SupersededAt,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;index"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "grants_outbox"
}

var (
	_ ports.RoundRepository  = (*Repository)(nil)
	_ ports.GrantRepository  = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
)
