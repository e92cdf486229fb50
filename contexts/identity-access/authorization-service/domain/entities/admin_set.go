package entities

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	domainerrors "ensgrants/contexts/identity-access/authorization-service/domain/errors"
)

// AdminSet is an immutable set of lower-cased admin addresses.
type AdminSet struct {
	members map[string]struct{}
}

// NewAdminSet validates and normalizes addresses. Blank entries are skipped.
func NewAdminSet(addresses []string) (AdminSet, error) {
	members := make(map[string]struct{}, len(addresses))
	for _, raw := range addresses {
		value := NormalizeAddress(raw)
		if value == "" {
			continue
		}
		if len(value) != 42 || !strings.HasPrefix(value, "0x") {
			return AdminSet{}, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAdminAddress, raw)
		}
		if _, err := hex.DecodeString(value[2:]); err != nil {
			return AdminSet{}, fmt.Errorf("%w: %q", domainerrors.ErrInvalidAdminAddress, raw)
		}
		members[value] = struct{}{}
	}
	return AdminSet{members: members}, nil
}

func (s AdminSet) Contains(address string) bool {
	value := NormalizeAddress(address)
	if value == "" {
		return false
	}
	_, ok := s.members[value]
	return ok
}

func (s AdminSet) Len() int {
	return len(s.members)
}

// Members returns the sorted admin addresses.
func (s AdminSet) Members() []string {
	items := make([]string, 0, len(s.members))
	for member := range s.members {
		items = append(items, member)
	}
	sort.Strings(items)
	return items
}

// NormalizeAddress is the single case convention used for every comparison.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
