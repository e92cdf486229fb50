// Package signatureservice recovers signer addresses from EIP-712 typed data
// inside the identity-access context.
//
// Layering:
// - domain: canonical domain, versioned type schemas, address normalization
// - application: Verifier resolves schema versions and validates messages
//   before recovery
// - ports: TypedDataRecoverer boundary for the cryptographic backend
// - adapters/eip712: go-ethereum implementation of hashing, recovery, signing
//
// Recovery never compares addresses itself. Callers compare the recovered
// address against the declared one and decide what a mismatch means.
package signatureservice
