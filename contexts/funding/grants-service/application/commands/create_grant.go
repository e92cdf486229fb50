package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	application "ensgrants/contexts/funding/grants-service/application"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	"ensgrants/contexts/funding/grants-service/ports"
)

// GrantData is the signed grant payload exactly as the client submitted it.
type GrantData struct {
	Address     string
	RoundID     *big.Int
	Title       string
	Description string
	FullText    string
}

type CreateGrantCommand struct {
	GrantData     GrantData
	Signature     string
	SchemaVersion string
}

type CreateGrantUseCase struct {
	Rounds     ports.RoundRepository
	Grants     ports.GrantRepository
	Signatures ports.SignatureVerifier
	Policy     ports.AuthorizationPolicy
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Scope      entities.SupersessionScope
	Logger     *slog.Logger
}

func (uc CreateGrantUseCase) Execute(ctx context.Context, cmd CreateGrantCommand) (entities.GrantSubmission, error) {
	logger := application.ResolveLogger(uc.Logger)

	signer, err := uc.Signatures.RecoverSigner(ctx, ports.SignedPayload{
		PrimaryType:   ports.PrimaryTypeGrant,
		SchemaVersion: cmd.SchemaVersion,
		Message:       cmd.GrantData.message(),
		Signature:     cmd.Signature,
	})
	if err != nil {
		return entities.GrantSubmission{}, err
	}
	if !uc.Policy.CanCreateGrant(signer, cmd.GrantData.Address) {
		logger.Warn("grant signer does not match declared address",
			"event", "grants_create_grant_signer_mismatch",
			"module", "funding/grants-service",
			"layer", "application",
			"signer", signer,
			"declared", cmd.GrantData.Address,
		)
		return entities.GrantSubmission{}, fmt.Errorf("%w: signer does not match declared address", domainerrors.ErrInvalidSignature)
	}

	roundID, err := entities.NarrowInt64("roundId", cmd.GrantData.RoundID)
	if err != nil {
		return entities.GrantSubmission{}, err
	}
	rounds, err := uc.Rounds.FindRoundsByID(ctx, roundID)
	if err != nil {
		logger.Error("round lookup failed",
			"event", "grants_round_lookup_failed",
			"module", "funding/grants-service",
			"layer", "application",
			"round_id", roundID,
			"error", err.Error(),
		)
		return entities.GrantSubmission{}, domainerrors.NewStoreError("find_rounds", err)
	}
	if len(rounds) != 1 {
		logger.Warn("round lookup did not resolve to exactly one round",
			"event", "grants_round_not_found",
			"module", "funding/grants-service",
			"layer", "application",
			"round_id", roundID,
			"matches", len(rounds),
		)
		return entities.GrantSubmission{}, fmt.Errorf("%w: round %d matched %d rows", domainerrors.ErrRoundNotFound, roundID, len(rounds))
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.GrantSubmission{}, domainerrors.NewStoreError("new_event_id", err)
	}
	scope := uc.Scope
	if scope == "" {
		scope = entities.SupersessionScopeRound
	}

	submission, err := uc.Grants.SubmitGrant(ctx, ports.SubmitGrantInput{
		Grant: entities.Grant{
			RoundID:     roundID,
			Proposer:    strings.ToLower(signer),
			Title:       cmd.GrantData.Title,
			Description: cmd.GrantData.Description,
			FullText:    cmd.GrantData.FullText,
			CreatedAt:   now(uc.Clock),
		},
		Scope:    scope,
		OutboxID: eventID,
	})
	if err != nil {
		logger.Error("submit grant failed",
			"event", "grants_submit_grant_failed",
			"module", "funding/grants-service",
			"layer", "application",
			"round_id", roundID,
			"proposer", signer,
			"error", err.Error(),
		)
		return entities.GrantSubmission{}, domainerrors.NewStoreError("submit_grant", err)
	}

	logger.Info("grant submitted",
		"event", "grants_grant_submitted",
		"module", "funding/grants-service",
		"layer", "application",
		"grant_id", submission.Grant.GrantID,
		"round_id", submission.Grant.RoundID,
		"proposer", submission.Grant.Proposer,
		"superseded_count", len(submission.Superseded),
	)
	return submission, nil
}

func (d GrantData) message() map[string]any {
	return map[string]any{
		"address":     d.Address,
		"roundId":     d.RoundID,
		"title":       d.Title,
		"description": d.Description,
		"fullText":    d.FullText,
	}
}
