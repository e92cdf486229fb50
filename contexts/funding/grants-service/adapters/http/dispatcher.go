package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	application "ensgrants/contexts/funding/grants-service/application"
	domainerrors "ensgrants/contexts/funding/grants-service/domain/errors"
	httptransport "ensgrants/contexts/funding/grants-service/transport/http"
)

const (
	MethodCreateRound = "create_round"
	MethodCreateGrant = "create_grant"
)

type route func(ctx context.Context, h Handler, body []byte) (any, error)

var routes = map[string]route{
	MethodCreateRound: dispatchCreateRound,
	MethodCreateGrant: dispatchCreateGrant,
}

// Dispatcher selects exactly one handler by the body's method tag. It does
// no authorization of its own.
type Dispatcher struct {
	Handler Handler
	Logger  *slog.Logger
}

// Dispatch returns the method tag it resolved alongside the handler result.
// The tag is empty when the body could not be parsed.
func (d Dispatcher) Dispatch(ctx context.Context, body []byte) (string, any, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return "", nil, fmt.Errorf("%w: body must be a JSON object", domainerrors.ErrMalformedRequest)
	}
	rawMethod, ok := fields["method"]
	if !ok {
		return "", nil, fmt.Errorf("%w: method is required", domainerrors.ErrMalformedRequest)
	}
	var tag *string
	if err := json.Unmarshal(rawMethod, &tag); err != nil || tag == nil {
		return "", nil, fmt.Errorf("%w: method must be a string", domainerrors.ErrMalformedRequest)
	}
	method := *tag

	handle, ok := routes[method]
	if !ok {
		application.ResolveLogger(d.Logger).Warn("unknown rpc method",
			"event", "grants_rpc_unknown_method",
			"module", "funding/grants-service",
			"layer", "transport",
			"method", method,
		)
		return method, nil, fmt.Errorf("%w: %q", domainerrors.ErrUnknownMethod, method)
	}
	response, err := handle(ctx, d.Handler, body)
	return method, response, err
}

func dispatchCreateRound(ctx context.Context, h Handler, body []byte) (any, error) {
	var req httptransport.CreateRoundRequest
	if err := decodeStrict(body, &req); err != nil {
		return nil, err
	}
	if err := validateRoundData(req.RoundData); err != nil {
		return nil, err
	}
	return h.CreateRoundHandler(ctx, req)
}

func dispatchCreateGrant(ctx context.Context, h Handler, body []byte) (any, error) {
	var req httptransport.CreateGrantRequest
	if err := decodeStrict(body, &req); err != nil {
		return nil, err
	}
	if req.GrantData == nil {
		return nil, fmt.Errorf("%w: grantData is required", domainerrors.ErrMalformedRequest)
	}
	if req.GrantData.RoundID == nil {
		return nil, fmt.Errorf("%w: grantData.roundId is required", domainerrors.ErrMalformedRequest)
	}
	return h.CreateGrantHandler(ctx, req)
}

func validateRoundData(data *httptransport.RoundData) error {
	if data == nil {
		return fmt.Errorf("%w: roundData is required", domainerrors.ErrMalformedRequest)
	}
	required := []struct {
		name  string
		value *httptransport.Uint256
	}{
		{"allocation_token_amount", data.AllocationTokenAmount},
		{"max_winner_count", data.MaxWinnerCount},
		{"proposal_start", data.ProposalStart},
		{"proposal_end", data.ProposalEnd},
		{"voting_start", data.VotingStart},
		{"voting_end", data.VotingEnd},
	}
	for _, field := range required {
		if field.value == nil {
			return fmt.Errorf("%w: roundData.%s is required", domainerrors.ErrMalformedRequest, field.name)
		}
	}
	return nil
}

func decodeStrict(body []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrMalformedRequest, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data after request body", domainerrors.ErrMalformedRequest)
	}
	return nil
}
