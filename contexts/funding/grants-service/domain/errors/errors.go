package errors

import "errors"

var (
	ErrMalformedRequest      = errors.New("malformed request")
	ErrUnknownMethod         = errors.New("unknown method")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrUnauthorized          = errors.New("signer is not authorized")
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")
	ErrRoundNotFound         = errors.New("round not found")
	ErrNumericOverflow       = errors.New("numeric value exceeds storage range")
	ErrInvalidRoundWindow    = errors.New("invalid round window")
	ErrGrantConflict         = errors.New("concurrent grant submission conflict")
)

// StoreError carries a persistence failure. Its message is the store's own
// message, unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
