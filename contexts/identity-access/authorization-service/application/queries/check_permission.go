package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "ensgrants/contexts/identity-access/authorization-service/application"
	"ensgrants/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "ensgrants/contexts/identity-access/authorization-service/domain/errors"
	"ensgrants/contexts/identity-access/authorization-service/domain/services"
	"ensgrants/contexts/identity-access/authorization-service/ports"
)

// CheckPermissionQuery asks whether Subject may perform Action. Declared is
// the address the request claims to act for.
type CheckPermissionQuery struct {
	Subject  string
	Declared string
	Action   entities.Action
}

// CheckPermissionUseCase evaluates the static grants policy.
type CheckPermissionUseCase struct {
	Admins entities.AdminSet
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute returns the decision. Unknown actions are denied with an error.
func (u CheckPermissionUseCase) Execute(_ context.Context, query CheckPermissionQuery) (entities.PermissionDecision, error) {
	logger := application.ResolveLogger(u.Logger)
	decision := entities.PermissionDecision{
		Subject:   entities.NormalizeAddress(query.Subject),
		Action:    query.Action,
		CheckedAt: u.now(),
	}

	switch query.Action {
	case entities.ActionCreateRound:
		decision.Allowed = services.CanCreateRound(u.Admins, query.Subject)
		decision.Reason = "admin_member"
		if !decision.Allowed {
			decision.Reason = "not_admin"
		}
	case entities.ActionCreateGrant:
		decision.Allowed = services.CanCreateGrant(query.Subject, query.Declared)
		decision.Reason = "self_attested"
		if !decision.Allowed {
			decision.Reason = "declared_address_mismatch"
		}
	default:
		decision.Reason = "unknown_action"
		return decision, domainerrors.ErrUnknownAction
	}

	if !decision.Allowed {
		logger.Warn("permission denied",
			"event", "authz_check_denied",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"subject", decision.Subject,
			"action", string(decision.Action),
			"reason", decision.Reason,
		)
		return decision, nil
	}
	logger.Debug("permission granted",
		"event", "authz_check_allowed",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"subject", decision.Subject,
		"action", string(decision.Action),
	)
	return decision, nil
}

// AuthorizeRoundCreation returns the decision for signer and
// ErrUnauthorized when signer is not in the admin set.
func (u CheckPermissionUseCase) AuthorizeRoundCreation(ctx context.Context, signer string) (entities.PermissionDecision, error) {
	decision, err := u.Execute(ctx, CheckPermissionQuery{
		Subject: signer,
		Action:  entities.ActionCreateRound,
	})
	if err != nil {
		return decision, err
	}
	if !decision.Allowed {
		return decision, fmt.Errorf("%w: %s", domainerrors.ErrUnauthorized, decision.Reason)
	}
	return decision, nil
}

func (u CheckPermissionUseCase) CanCreateGrant(signer string, declared string) bool {
	decision, err := u.Execute(context.Background(), CheckPermissionQuery{
		Subject:  signer,
		Declared: declared,
		Action:   entities.ActionCreateGrant,
	})
	return err == nil && decision.Allowed
}

func (u CheckPermissionUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
