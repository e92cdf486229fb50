package errors

import "errors"

var (
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrMalformedMessage      = errors.New("typed data message does not match schema")
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")
	ErrUnknownPrimaryType    = errors.New("unknown typed data primary type")
)
