package postgresadapter

import (
	"context"
	"fmt"
)

const activeGrantIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS grants_active_round_proposer_idx
	ON grants (round_id, proposer) WHERE deleted = false`

// Migrate creates the rounds, grants and outbox tables and the index that
// allows at most one active grant per (round, proposer).
func (r *Repository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&roundModel{}, &grantModel{}, &outboxModel{}); err != nil {
		return r.logError("grants_repo_migrate_failed", fmt.Errorf("auto migrate: %w", err))
	}
	if err := db.Exec(activeGrantIndexSQL).Error; err != nil {
		return r.logError("grants_repo_migrate_failed", fmt.Errorf("active grant index: %w", err))
	}
	return nil
}
