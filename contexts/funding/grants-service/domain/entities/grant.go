package entities

import (
	"fmt"
	"strings"
	"time"
)

type Grant struct {
	GrantID      int64
	RoundID      int64
	Proposer     string
	Title        string
	Description  string
	FullText     string
	Deleted      bool
	SupersededAt *time.Time
	CreatedAt    time.Time
}

func (g Grant) Active() bool {
	return !g.Deleted
}

// SupersessionScope selects which prior grants a new submission replaces.
type SupersessionScope string

const (
	// SupersessionScopeRound replaces the proposer's active grants in the
	// same round only.
	SupersessionScopeRound SupersessionScope = "round"
	// SupersessionScopeProposer replaces every active grant of the proposer
	// across all rounds.
	SupersessionScopeProposer SupersessionScope = "proposer"
)

func ParseSupersessionScope(raw string) (SupersessionScope, error) {
	switch SupersessionScope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SupersessionScopeRound:
		return SupersessionScopeRound, nil
	case SupersessionScopeProposer:
		return SupersessionScopeProposer, nil
	default:
		return "", fmt.Errorf("unsupported supersession scope %q", raw)
	}
}

// Covers reports whether incoming supersedes existing under scope.
func (s SupersessionScope) Covers(existing Grant, incoming Grant) bool {
	if !existing.Active() || existing.Proposer != incoming.Proposer {
		return false
	}
	if s == SupersessionScopeProposer {
		return true
	}
	return existing.RoundID == incoming.RoundID
}

// GrantSubmission is the result of one atomic supersede-and-insert.
type GrantSubmission struct {
	Grant      Grant
	Superseded []int64
}
