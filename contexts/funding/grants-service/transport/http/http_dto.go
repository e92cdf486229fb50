package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoundData struct {
	Address                string   `json:"address"`
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	AllocationTokenAddress string   `json:"allocation_token_address"`
	AllocationTokenAmount  *Uint256 `json:"allocation_token_amount" swaggertype:"string"`
	MaxWinnerCount         *Uint256 `json:"max_winner_count" swaggertype:"string"`
	ProposalStart          *Uint256 `json:"proposal_start" swaggertype:"string"`
	ProposalEnd            *Uint256 `json:"proposal_end" swaggertype:"string"`
	VotingStart            *Uint256 `json:"voting_start" swaggertype:"string"`
	VotingEnd              *Uint256 `json:"voting_end" swaggertype:"string"`
}

type CreateRoundRequest struct {
	Method        string     `json:"method"`
	RoundData     *RoundData `json:"roundData"`
	Signature     string     `json:"signature"`
	SchemaVersion string     `json:"schemaVersion,omitempty"`
}

type GrantData struct {
	Address     string   `json:"address"`
	RoundID     *Uint256 `json:"roundId" swaggertype:"string"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FullText    string   `json:"fullText"`
}

type CreateGrantRequest struct {
	Method        string     `json:"method"`
	GrantData     *GrantData `json:"grantData"`
	Signature     string     `json:"signature"`
	SchemaVersion string     `json:"schemaVersion,omitempty"`
}

type RoundDTO struct {
	RoundID                int64  `json:"id"`
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Creator                string `json:"creator"`
	AllocationTokenAddress string `json:"allocation_token_address"`
	AllocationTokenAmount  string `json:"allocation_token_amount"`
	MaxWinnerCount         int64  `json:"max_winner_count"`
	ProposalStart          int64  `json:"proposal_start"`
	ProposalEnd            int64  `json:"proposal_end"`
	VotingStart            int64  `json:"voting_start"`
	VotingEnd              int64  `json:"voting_end"`
	CreatedAt              string `json:"created_at"`
}

type GrantDTO struct {
	GrantID     int64  `json:"id"`
	RoundID     int64  `json:"round_id"`
	Proposer    string `json:"proposer"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FullText    string `json:"full_text"`
	Deleted     bool   `json:"deleted"`
	CreatedAt   string `json:"created_at"`
}

type CreateRoundResponse struct {
	Data []RoundDTO `json:"data"`
}

type CreateGrantResponse struct {
	Data       []GrantDTO `json:"data"`
	Superseded []int64    `json:"superseded"`
}
