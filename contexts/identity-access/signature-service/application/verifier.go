package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ensgrants/contexts/identity-access/signature-service/domain/entities"
	domainerrors "ensgrants/contexts/identity-access/signature-service/domain/errors"
	"ensgrants/contexts/identity-access/signature-service/ports"
)

// VerificationRequest is one signed envelope as received from a client.
type VerificationRequest struct {
	PrimaryType   string
	SchemaVersion string
	Message       map[string]any
	Signature     string
}

// Verifier binds recovery to the canonical domain and the registered schema
// versions. The schema version is checked before any hashing happens.
type Verifier struct {
	Schemas   *entities.SchemaRegistry
	Recoverer ports.TypedDataRecoverer
	Logger    *slog.Logger
}

func (v Verifier) Recover(ctx context.Context, req VerificationRequest) (entities.Address, error) {
	logger := ResolveLogger(v.Logger)
	schemas := v.Schemas
	if schemas == nil {
		schemas = entities.DefaultSchemaRegistry()
	}

	schema, err := schemas.Resolve(req.PrimaryType, strings.TrimSpace(req.SchemaVersion))
	if err != nil {
		logger.Warn("typed data schema rejected",
			"event", "signature_schema_rejected",
			"module", "identity-access/signature-service",
			"layer", "application",
			"primary_type", req.PrimaryType,
			"schema_version", req.SchemaVersion,
			"error", err.Error(),
		)
		return "", err
	}
	if err := schema.Validate(req.Message); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Signature) == "" {
		return "", domainerrors.ErrInvalidSignature
	}

	address, err := v.Recoverer.Recover(ctx, entities.TypedData{
		Domain:  entities.CanonicalDomain,
		Schema:  schema,
		Message: req.Message,
	}, req.Signature)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidSignature) && !errors.Is(err, domainerrors.ErrMalformedMessage) {
			logger.Error("typed data recovery failed",
				"event", "signature_recovery_failed",
				"module", "identity-access/signature-service",
				"layer", "application",
				"primary_type", schema.PrimaryType,
				"schema_version", schema.Version,
				"error", err.Error(),
			)
		}
		return "", err
	}

	logger.Debug("typed data signer recovered",
		"event", "signature_recovered",
		"module", "identity-access/signature-service",
		"layer", "application",
		"primary_type", schema.PrimaryType,
		"schema_version", schema.Version,
		"signer", address.String(),
	)
	return address, nil
}
