package entities

import "time"

type Action string

const (
	ActionCreateRound Action = "create_round"
	ActionCreateGrant Action = "create_grant"
)

// PermissionDecision is the outcome of one policy evaluation.
type PermissionDecision struct {
	Subject   string    `json:"subject"`
	Action    Action    `json:"action"`
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason"`
	CheckedAt time.Time `json:"checked_at"`
}
