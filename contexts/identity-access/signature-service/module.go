package signatureservice

import (
	"log/slog"

	"ensgrants/contexts/identity-access/signature-service/adapters/eip712"
	"ensgrants/contexts/identity-access/signature-service/application"
	"ensgrants/contexts/identity-access/signature-service/domain/entities"
	"ensgrants/contexts/identity-access/signature-service/ports"
)

type Module struct {
	Verifier application.Verifier
}

type Dependencies struct {
	Schemas   *entities.SchemaRegistry
	Recoverer ports.TypedDataRecoverer
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	schemas := deps.Schemas
	if schemas == nil {
		schemas = entities.DefaultSchemaRegistry()
	}
	recoverer := deps.Recoverer
	if recoverer == nil {
		recoverer = eip712.Recoverer{}
	}
	return Module{
		Verifier: application.Verifier{
			Schemas:   schemas,
			Recoverer: recoverer,
			Logger:    deps.Logger,
		},
	}
}
