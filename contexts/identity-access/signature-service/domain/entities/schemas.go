package entities

const (
	PrimaryTypeRound = "Round"
	PrimaryTypeGrant = "Grant"
)

// RoundSchemaV1 mirrors the roundData request object field for field.
var RoundSchemaV1 = Schema{
	PrimaryType: PrimaryTypeRound,
	Version:     "1",
	Fields: []Field{
		{Name: "address", Type: FieldTypeAddress},
		{Name: "title", Type: FieldTypeString},
		{Name: "description", Type: FieldTypeString},
		{Name: "allocation_token_address", Type: FieldTypeAddress},
		{Name: "allocation_token_amount", Type: FieldTypeUint256},
		{Name: "max_winner_count", Type: FieldTypeUint256},
		{Name: "proposal_start", Type: FieldTypeUint256},
		{Name: "proposal_end", Type: FieldTypeUint256},
		{Name: "voting_start", Type: FieldTypeUint256},
		{Name: "voting_end", Type: FieldTypeUint256},
	},
}

// GrantSchemaV1 is the retired grant shape that also carried round windows.
// It stays registered so clients still signing it get an explicit mismatch.
var GrantSchemaV1 = Schema{
	PrimaryType: PrimaryTypeGrant,
	Version:     "1",
	Fields: []Field{
		{Name: "address", Type: FieldTypeAddress},
		{Name: "roundId", Type: FieldTypeUint256},
		{Name: "title", Type: FieldTypeString},
		{Name: "description", Type: FieldTypeString},
		{Name: "fullText", Type: FieldTypeString},
		{Name: "proposalStart", Type: FieldTypeUint256},
		{Name: "proposalEnd", Type: FieldTypeUint256},
		{Name: "votingStart", Type: FieldTypeUint256},
		{Name: "votingEnd", Type: FieldTypeUint256},
	},
}

var GrantSchemaV2 = Schema{
	PrimaryType: PrimaryTypeGrant,
	Version:     "2",
	Fields: []Field{
		{Name: "address", Type: FieldTypeAddress},
		{Name: "roundId", Type: FieldTypeUint256},
		{Name: "title", Type: FieldTypeString},
		{Name: "description", Type: FieldTypeString},
		{Name: "fullText", Type: FieldTypeString},
	},
}

// DefaultSchemaRegistry returns the registry used by the running service.
func DefaultSchemaRegistry() *SchemaRegistry {
	registry := NewSchemaRegistry()
	registry.Register(RoundSchemaV1, true)
	registry.Register(GrantSchemaV1, false)
	registry.Register(GrantSchemaV2, true)
	return registry
}
