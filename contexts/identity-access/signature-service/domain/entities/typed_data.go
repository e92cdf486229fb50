package entities

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	domainerrors "ensgrants/contexts/identity-access/signature-service/domain/errors"
)

const (
	FieldTypeAddress = "address"
	FieldTypeString  = "string"
	FieldTypeUint256 = "uint256"
)

// Domain is the EIP-712 domain separator input.
type Domain struct {
	Name    string
	Version string
	ChainID int64
}

// CanonicalDomain is the only domain requests are verified against. Any
// difference from what the wallet signed silently yields another address.
var CanonicalDomain = Domain{
	Name:    "ENS Grants",
	Version: "1",
	ChainID: 1,
}

type Field struct {
	Name string
	Type string
}

// Schema is one version of an ordered EIP-712 struct type.
type Schema struct {
	PrimaryType string
	Version     string
	Fields      []Field
}

// TypedData is a fully resolved payload ready for hashing.
type TypedData struct {
	Domain  Domain
	Schema  Schema
	Message map[string]any
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Validate checks that message carries exactly the schema fields with values
// of the declared kinds. uint256 values must be *big.Int.
func (s Schema) Validate(message map[string]any) error {
	if len(message) != len(s.Fields) {
		return fmt.Errorf("%w: %s v%s expects %d fields, got %d",
			domainerrors.ErrMalformedMessage, s.PrimaryType, s.Version, len(s.Fields), len(message))
	}
	for _, field := range s.Fields {
		value, ok := message[field.Name]
		if !ok {
			return fmt.Errorf("%w: missing field %q", domainerrors.ErrMalformedMessage, field.Name)
		}
		if err := validateValue(field, value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(field Field, value any) error {
	switch field.Type {
	case FieldTypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: field %q must be a string", domainerrors.ErrMalformedMessage, field.Name)
		}
	case FieldTypeAddress:
		raw, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: field %q must be an address", domainerrors.ErrMalformedMessage, field.Name)
		}
		if _, err := NormalizeAddress(raw); err != nil {
			return fmt.Errorf("%w: field %q: %v", domainerrors.ErrMalformedMessage, field.Name, err)
		}
	case FieldTypeUint256:
		number, ok := value.(*big.Int)
		if !ok || number == nil {
			return fmt.Errorf("%w: field %q must be an unsigned integer", domainerrors.ErrMalformedMessage, field.Name)
		}
		if number.Sign() < 0 || number.Cmp(maxUint256) > 0 {
			return fmt.Errorf("%w: field %q is outside uint256 range", domainerrors.ErrMalformedMessage, field.Name)
		}
	default:
		return fmt.Errorf("%w: field %q has unsupported type %q", domainerrors.ErrMalformedMessage, field.Name, field.Type)
	}
	return nil
}

// SchemaRegistry holds every known schema version per primary type and the
// single version currently accepted for each.
type SchemaRegistry struct {
	schemas map[string]map[string]Schema
	current map[string]string
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		schemas: make(map[string]map[string]Schema),
		current: make(map[string]string),
	}
}

// Register adds schema. When current is true it becomes the accepted version
// for its primary type.
func (r *SchemaRegistry) Register(schema Schema, current bool) {
	versions, ok := r.schemas[schema.PrimaryType]
	if !ok {
		versions = make(map[string]Schema)
		r.schemas[schema.PrimaryType] = versions
	}
	versions[schema.Version] = schema
	if current {
		r.current[schema.PrimaryType] = schema.Version
	}
}

// Resolve returns the accepted schema for primaryType. An empty version means
// the current one; any other version, known or not, is a mismatch.
func (r *SchemaRegistry) Resolve(primaryType string, version string) (Schema, error) {
	versions, ok := r.schemas[primaryType]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", domainerrors.ErrUnknownPrimaryType, primaryType)
	}
	current := r.current[primaryType]
	if version == "" {
		version = current
	}
	if version != current {
		if _, known := versions[version]; known {
			return Schema{}, fmt.Errorf("%w: %s v%s is retired, current is v%s",
				domainerrors.ErrSchemaVersionMismatch, primaryType, version, current)
		}
		return Schema{}, fmt.Errorf("%w: %s has no version %q (known: %s)",
			domainerrors.ErrSchemaVersionMismatch, primaryType, version, strings.Join(r.Versions(primaryType), ", "))
	}
	return versions[current], nil
}

// Versions lists the registered versions of primaryType in ascending order.
func (r *SchemaRegistry) Versions(primaryType string) []string {
	versions := make([]string, 0, len(r.schemas[primaryType]))
	for version := range r.schemas[primaryType] {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}
