package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	application "ensgrants/contexts/funding/grants-service/application"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	"ensgrants/contexts/funding/grants-service/ports"
)

// RoundData is the signed round payload exactly as the client submitted it.
type RoundData struct {
	Address                string
	Title                  string
	Description            string
	AllocationTokenAddress string
	AllocationTokenAmount  *big.Int
	MaxWinnerCount         *big.Int
	ProposalStart          *big.Int
	ProposalEnd            *big.Int
	VotingStart            *big.Int
	VotingEnd              *big.Int
}

type CreateRoundCommand struct {
	RoundData     RoundData
	Signature     string
	SchemaVersion string
}

type CreateRoundUseCase struct {
	Rounds     ports.RoundRepository
	Signatures ports.SignatureVerifier
	Policy     ports.AuthorizationPolicy
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CreateRoundUseCase) Execute(ctx context.Context, cmd CreateRoundCommand) (entities.Round, error) {
	logger := application.ResolveLogger(uc.Logger)

	signer, err := uc.Signatures.RecoverSigner(ctx, ports.SignedPayload{
		PrimaryType:   ports.PrimaryTypeRound,
		SchemaVersion: cmd.SchemaVersion,
		Message:       cmd.RoundData.message(),
		Signature:     cmd.Signature,
	})
	if err != nil {
		return entities.Round{}, err
	}
	if !sameAddress(signer, cmd.RoundData.Address) {
		logger.Warn("round signer does not match declared address",
			"event", "grants_create_round_signer_mismatch",
			"module", "funding/grants-service",
			"layer", "application",
			"signer", signer,
			"declared", cmd.RoundData.Address,
		)
		return entities.Round{}, fmt.Errorf("%w: signer does not match declared address", domainerrors.ErrInvalidSignature)
	}
	if err := uc.Policy.AuthorizeRoundCreation(ctx, signer); err != nil {
		return entities.Round{}, err
	}

	round, err := cmd.RoundData.toEntity(signer)
	if err != nil {
		return entities.Round{}, err
	}
	if err := round.ValidateWindows(); err != nil {
		return entities.Round{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Round{}, domainerrors.NewStoreError("new_event_id", err)
	}
	round.CreatedAt = now(uc.Clock)

	created, err := uc.Rounds.CreateRound(ctx, ports.CreateRoundInput{
		Round:    round,
		OutboxID: eventID,
	})
	if err != nil {
		logger.Error("create round failed",
			"event", "grants_create_round_failed",
			"module", "funding/grants-service",
			"layer", "application",
			"creator", signer,
			"error", err.Error(),
		)
		return entities.Round{}, domainerrors.NewStoreError("create_round", err)
	}

	logger.Info("round created",
		"event", "grants_round_created",
		"module", "funding/grants-service",
		"layer", "application",
		"round_id", created.RoundID,
		"creator", created.Creator,
	)
	return created, nil
}

func (d RoundData) message() map[string]any {
	return map[string]any{
		"address":                  d.Address,
		"title":                    d.Title,
		"description":              d.Description,
		"allocation_token_address": d.AllocationTokenAddress,
		"allocation_token_amount":  d.AllocationTokenAmount,
		"max_winner_count":         d.MaxWinnerCount,
		"proposal_start":           d.ProposalStart,
		"proposal_end":             d.ProposalEnd,
		"voting_start":             d.VotingStart,
		"voting_end":               d.VotingEnd,
	}
}

func (d RoundData) toEntity(creator string) (entities.Round, error) {
	round := entities.Round{
		Title:                  d.Title,
		Description:            d.Description,
		Creator:                creator,
		AllocationTokenAddress: strings.ToLower(d.AllocationTokenAddress),
	}
	if d.AllocationTokenAmount == nil {
		return entities.Round{}, fmt.Errorf("%w: allocation_token_amount is required", domainerrors.ErrMalformedRequest)
	}
	round.AllocationTokenAmount = new(big.Int).Set(d.AllocationTokenAmount)

	narrowed := []struct {
		field  string
		value  *big.Int
		target *int64
	}{
		{"max_winner_count", d.MaxWinnerCount, &round.MaxWinnerCount},
		{"proposal_start", d.ProposalStart, &round.ProposalStart},
		{"proposal_end", d.ProposalEnd, &round.ProposalEnd},
		{"voting_start", d.VotingStart, &round.VotingStart},
		{"voting_end", d.VotingEnd, &round.VotingEnd},
	}
	for _, n := range narrowed {
		value, err := entities.NarrowInt64(n.field, n.value)
		if err != nil {
			return entities.Round{}, err
		}
		*n.target = value
	}
	return round, nil
}

func sameAddress(a string, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func now(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
