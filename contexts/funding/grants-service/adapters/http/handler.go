package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ensgrants/contexts/funding/grants-service/application/commands"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	httptransport "ensgrants/contexts/funding/grants-service/transport/http"
)

type Handler struct {
	CreateRound commands.CreateRoundUseCase
	CreateGrant commands.CreateGrantUseCase
	Logger      *slog.Logger
}

func (h Handler) CreateRoundHandler(
	ctx context.Context,
	req httptransport.CreateRoundRequest,
) (httptransport.CreateRoundResponse, error) {
	data := req.RoundData
	if data == nil {
		return httptransport.CreateRoundResponse{}, fmt.Errorf("%w: roundData is required", domainerrors.ErrMalformedRequest)
	}
	round, err := h.CreateRound.Execute(ctx, commands.CreateRoundCommand{
		RoundData: commands.RoundData{
			Address:                data.Address,
			Title:                  data.Title,
			Description:            data.Description,
			AllocationTokenAddress: data.AllocationTokenAddress,
			AllocationTokenAmount:  data.AllocationTokenAmount.Big(),
			MaxWinnerCount:         data.MaxWinnerCount.Big(),
			ProposalStart:          data.ProposalStart.Big(),
			ProposalEnd:            data.ProposalEnd.Big(),
			VotingStart:            data.VotingStart.Big(),
			VotingEnd:              data.VotingEnd.Big(),
		},
		Signature:     req.Signature,
		SchemaVersion: req.SchemaVersion,
	})
	if err != nil {
		return httptransport.CreateRoundResponse{}, err
	}
	return httptransport.CreateRoundResponse{
		Data: []httptransport.RoundDTO{mapRound(round)},
	}, nil
}

func (h Handler) CreateGrantHandler(
	ctx context.Context,
	req httptransport.CreateGrantRequest,
) (httptransport.CreateGrantResponse, error) {
	data := req.GrantData
	if data == nil {
		return httptransport.CreateGrantResponse{}, fmt.Errorf("%w: grantData is required", domainerrors.ErrMalformedRequest)
	}
	submission, err := h.CreateGrant.Execute(ctx, commands.CreateGrantCommand{
		GrantData: commands.GrantData{
			Address:     data.Address,
			RoundID:     data.RoundID.Big(),
			Title:       data.Title,
			Description: data.Description,
			FullText:    data.FullText,
		},
		Signature:     req.Signature,
		SchemaVersion: req.SchemaVersion,
	})
	if err != nil {
		return httptransport.CreateGrantResponse{}, err
	}
	superseded := append([]int64{}, submission.Superseded...)
	return httptransport.CreateGrantResponse{
		Data:       []httptransport.GrantDTO{mapGrant(submission.Grant)},
		Superseded: superseded,
	}, nil
}

func mapRound(round entities.Round) httptransport.RoundDTO {
	amount := "0"
	if round.AllocationTokenAmount != nil {
		amount = round.AllocationTokenAmount.String()
	}
	return httptransport.RoundDTO{
		RoundID:                round.RoundID,
		Title:                  round.Title,
		Description:            round.Description,
		Creator:                round.Creator,
		AllocationTokenAddress: round.AllocationTokenAddress,
		AllocationTokenAmount:  amount,
		MaxWinnerCount:         round.MaxWinnerCount,
		ProposalStart:          round.ProposalStart,
		ProposalEnd:            round.ProposalEnd,
		VotingStart:            round.VotingStart,
		VotingEnd:              round.VotingEnd,
		CreatedAt:              formatTime(round.CreatedAt),
	}
}

func mapGrant(grant entities.Grant) httptransport.GrantDTO {
	return httptransport.GrantDTO{
		GrantID:     grant.GrantID,
		RoundID:     grant.RoundID,
		Proposer:    grant.Proposer,
		Title:       grant.Title,
		Description: grant.Description,
		FullText:    grant.FullText,
		Deleted:     grant.Deleted,
		CreatedAt:   formatTime(grant.CreatedAt),
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
