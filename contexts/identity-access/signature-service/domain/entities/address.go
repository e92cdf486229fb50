package entities

import (
	"encoding/hex"
	"strings"

	domainerrors "ensgrants/contexts/identity-access/signature-service/domain/errors"
)

// Address is a 0x-prefixed, lower-case, 20-byte hex account address.
type Address string

// NormalizeAddress validates raw and returns its lower-case form.
func NormalizeAddress(raw string) (Address, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) != 42 || !strings.HasPrefix(value, "0x") {
		return "", domainerrors.ErrInvalidAddress
	}
	if _, err := hex.DecodeString(value[2:]); err != nil {
		return "", domainerrors.ErrInvalidAddress
	}
	return Address(value), nil
}

func (a Address) String() string {
	return string(a)
}

// Equal compares two addresses case-insensitively.
func (a Address) Equal(other string) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(other))
}
