package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator issues event and outbox ids. Round and grant ids come from
// the database sequences.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
