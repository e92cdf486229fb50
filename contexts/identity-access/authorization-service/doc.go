// Package authorization decides whether a recovered signer may perform a
// grants mutation.
//
// Layering:
// - domain: admin set, actions, permission decisions, pure policy engine
// - application: CheckPermissionUseCase with logged allow/deny decisions
// - ports: clock boundary for decision timestamps
// - adapters: system clock
//
// Boundary notes:
// - Decisions operate on already-recovered identities. Signature checks live
//   in identity-access/signature-service.
// - The admin set is injected at construction and never mutated afterwards.
package authorization
