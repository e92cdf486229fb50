package entities

import (
	"fmt"
	"math/big"
	"time"

	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
)

type Round struct {
	RoundID                int64
	Title                  string
	Description            string
	Creator                string
	AllocationTokenAddress string
	AllocationTokenAmount  *big.Int
	MaxWinnerCount         int64
	ProposalStart          int64
	ProposalEnd            int64
	VotingStart            int64
	VotingEnd              int64
	CreatedAt              time.Time
}

// ValidateWindows requires each window to end no earlier than it starts.
func (r Round) ValidateWindows() error {
	if r.ProposalEnd < r.ProposalStart {
		return fmt.Errorf("%w: proposal_end %d is before proposal_start %d",
			domainerrors.ErrInvalidRoundWindow, r.ProposalEnd, r.ProposalStart)
	}
	if r.VotingEnd < r.VotingStart {
		return fmt.Errorf("%w: voting_end %d is before voting_start %d",
			domainerrors.ErrInvalidRoundWindow, r.VotingEnd, r.VotingStart)
	}
	return nil
}

