package authorization

import (
	"log/slog"

	"ensgrants/contexts/identity-access/authorization-service/adapters/clock"
	application "ensgrants/contexts/identity-access/authorization-service/application"
	"ensgrants/contexts/identity-access/authorization-service/application/queries"
	"ensgrants/contexts/identity-access/authorization-service/domain/entities"
	"ensgrants/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Policy queries.CheckPermissionUseCase
}

// Dependencies captures the configuration required by NewModule.
type Dependencies struct {
	AdminAddresses []string
	Clock          ports.Clock
	Logger         *slog.Logger
}

// NewModule validates the admin allowlist and wires the policy.
func NewModule(deps Dependencies) (Module, error) {
	admins, err := entities.NewAdminSet(deps.AdminAddresses)
	if err != nil {
		return Module{}, err
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := application.ResolveLogger(deps.Logger)
	if admins.Len() == 0 {
		logger.Warn("admin allowlist is empty, round creation is disabled",
			"event", "authz_admin_set_empty",
			"module", "identity-access/authorization-service",
			"layer", "module",
		)
	} else {
		logger.Info("admin allowlist loaded",
			"event", "authz_admin_set_loaded",
			"module", "identity-access/authorization-service",
			"layer", "module",
			"admins", admins.Members(),
		)
	}
	return Module{
		Policy: queries.CheckPermissionUseCase{
			Admins: admins,
			Clock:  clk,
			Logger: deps.Logger,
		},
	}, nil
}
