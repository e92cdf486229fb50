package entities

import (
	"errors"
	"math"
	"math/big"
	"testing"

	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
)

func TestRoundValidateWindows(t *testing.T) {
	ok := Round{ProposalStart: 10, ProposalEnd: 10, VotingStart: 11, VotingEnd: 20}
	if err := ok.ValidateWindows(); err != nil {
		t.Fatalf("expected equal bounds to be accepted, got %v", err)
	}

	badProposal := Round{ProposalStart: 10, ProposalEnd: 9, VotingStart: 11, VotingEnd: 20}
	if err := badProposal.ValidateWindows(); !errors.Is(err, domainerrors.ErrInvalidRoundWindow) {
		t.Fatalf("expected invalid window for proposal, got %v", err)
	}

	badVoting := Round{ProposalStart: 1, ProposalEnd: 2, VotingStart: 30, VotingEnd: 20}
	if err := badVoting.ValidateWindows(); !errors.Is(err, domainerrors.ErrInvalidRoundWindow) {
		t.Fatalf("expected invalid window for voting, got %v", err)
	}
}

func TestNarrowInt64(t *testing.T) {
	value, err := NarrowInt64("max_winner_count", big.NewInt(3))
	if err != nil || value != 3 {
		t.Fatalf("expected 3, got %d (%v)", value, err)
	}

	value, err = NarrowInt64("voting_end", big.NewInt(math.MaxInt64))
	if err != nil || value != math.MaxInt64 {
		t.Fatalf("expected max int64 to fit, got %d (%v)", value, err)
	}

	tooLarge := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	if _, err := NarrowInt64("voting_end", tooLarge); !errors.Is(err, domainerrors.ErrNumericOverflow) {
		t.Fatalf("expected numeric overflow, got %v", err)
	}
	if _, err := NarrowInt64("voting_end", big.NewInt(-1)); !errors.Is(err, domainerrors.ErrNumericOverflow) {
		t.Fatalf("expected negative value to be rejected, got %v", err)
	}
	if _, err := NarrowInt64("voting_end", nil); !errors.Is(err, domainerrors.ErrMalformedRequest) {
		t.Fatalf("expected missing value to be malformed, got %v", err)
	}
}

func TestSupersessionScopeCovers(t *testing.T) {
	incoming := Grant{RoundID: 1, Proposer: "0xabc"}
	sameRound := Grant{GrantID: 1, RoundID: 1, Proposer: "0xabc"}
	otherRound := Grant{GrantID: 2, RoundID: 2, Proposer: "0xabc"}
	otherProposer := Grant{GrantID: 3, RoundID: 1, Proposer: "0xdef"}
	alreadyDeleted := Grant{GrantID: 4, RoundID: 1, Proposer: "0xabc", Deleted: true}

	if !SupersessionScopeRound.Covers(sameRound, incoming) {
		t.Fatalf("round scope must cover same round and proposer")
	}
	if SupersessionScopeRound.Covers(otherRound, incoming) {
		t.Fatalf("round scope must not cover other rounds")
	}
	if !SupersessionScopeProposer.Covers(otherRound, incoming) {
		t.Fatalf("proposer scope must cover every round of the proposer")
	}
	if SupersessionScopeProposer.Covers(otherProposer, incoming) {
		t.Fatalf("no scope covers another proposer")
	}
	if SupersessionScopeProposer.Covers(alreadyDeleted, incoming) {
		t.Fatalf("deleted grants are never superseded again")
	}
}

func TestParseSupersessionScope(t *testing.T) {
	cases := map[string]SupersessionScope{
		"":          SupersessionScopeRound,
		"round":     SupersessionScopeRound,
		" Proposer": SupersessionScopeProposer,
	}
	for raw, expected := range cases {
		scope, err := ParseSupersessionScope(raw)
		if err != nil || scope != expected {
			t.Fatalf("parse %q: expected %q, got %q (%v)", raw, expected, scope, err)
		}
	}
	if _, err := ParseSupersessionScope("global"); err == nil {
		t.Fatalf("expected unknown scope to fail")
	}
}
