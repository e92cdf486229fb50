package ports

import (
	"context"

	"ensgrants/contexts/identity-access/signature-service/domain/entities"
)

// TypedDataRecoverer hashes typed data and recovers the signing address.
// Implementations must return errors.ErrInvalidSignature for structurally
// unrecoverable signatures and a lower-case address otherwise.
type TypedDataRecoverer interface {
	Recover(ctx context.Context, data entities.TypedData, signature string) (entities.Address, error)
}
