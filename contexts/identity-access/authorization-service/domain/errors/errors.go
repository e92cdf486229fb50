package errors

import "errors"

var (
	ErrUnauthorized        = errors.New("signer is not authorized")
	ErrInvalidAdminAddress = errors.New("invalid admin address")
	ErrUnknownAction       = errors.New("unknown action")
)
