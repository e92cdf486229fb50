package bootstrap

import (
	"context"
	"errors"
	"fmt"

	grantserrors "ensgrants/contexts/funding/grants-service/domain/errors"
	grantsports "ensgrants/contexts/funding/grants-service/ports"
	sigapp "ensgrants/contexts/identity-access/signature-service/application"
	sigerrors "ensgrants/contexts/identity-access/signature-service/domain/errors"
)

// signatureBridge adapts the identity-access verifier to the grants
// SignatureVerifier port and translates its errors into grants errors.
type signatureBridge struct {
	verifier sigapp.Verifier
}

func (b signatureBridge) RecoverSigner(ctx context.Context, payload grantsports.SignedPayload) (string, error) {
	address, err := b.verifier.Recover(ctx, sigapp.VerificationRequest{
		PrimaryType:   payload.PrimaryType,
		SchemaVersion: payload.SchemaVersion,
		Message:       payload.Message,
		Signature:     payload.Signature,
	})
	if err != nil {
		return "", translateSignatureError(err)
	}
	return address.String(), nil
}

func translateSignatureError(err error) error {
	switch {
	case errors.Is(err, sigerrors.ErrSchemaVersionMismatch):
		return fmt.Errorf("%w: %v", grantserrors.ErrSchemaVersionMismatch, err)
	case errors.Is(err, sigerrors.ErrMalformedMessage),
		errors.Is(err, sigerrors.ErrUnknownPrimaryType):
		return fmt.Errorf("%w: %v", grantserrors.ErrMalformedRequest, err)
	default:
		return fmt.Errorf("%w: %v", grantserrors.ErrInvalidSignature, err)
	}
}

var _ grantsports.SignatureVerifier = signatureBridge{}
