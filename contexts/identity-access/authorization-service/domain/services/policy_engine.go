package services

import "ensgrants/contexts/identity-access/authorization-service/domain/entities"

// CanCreateRound grants round creation to admin set members only.
func CanCreateRound(admins entities.AdminSet, signer string) bool {
	return admins.Contains(signer)
}

// CanCreateGrant is self-attestation: the signer must be the declared
// proposer. There is no admin override.
func CanCreateGrant(signer string, declared string) bool {
	normalizedSigner := entities.NormalizeAddress(signer)
	if normalizedSigner == "" {
		return false
	}
	return normalizedSigner == entities.NormalizeAddress(declared)
}
