package bootstrap

import (
	"context"
	"errors"
	"fmt"

	grantserrors "ensgrants/contexts/funding/grants-service/domain/errors"
	grantsports "ensgrants/contexts/funding/grants-service/ports"
	authqueries "ensgrants/contexts/identity-access/authorization-service/application/queries"
	autherrors "ensgrants/contexts/identity-access/authorization-service/domain/errors"
)

// policyBridge adapts the identity-access permission checks to the grants
// AuthorizationPolicy port.
type policyBridge struct {
	policy authqueries.CheckPermissionUseCase
}

func (b policyBridge) AuthorizeRoundCreation(ctx context.Context, signer string) error {
	if _, err := b.policy.AuthorizeRoundCreation(ctx, signer); err != nil {
		return translatePolicyError(err)
	}
	return nil
}

func (b policyBridge) CanCreateGrant(signer string, declared string) bool {
	return b.policy.CanCreateGrant(signer, declared)
}

func translatePolicyError(err error) error {
	if errors.Is(err, autherrors.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", grantserrors.ErrUnauthorized, err)
	}
	return err
}

var _ grantsports.AuthorizationPolicy = policyBridge{}
