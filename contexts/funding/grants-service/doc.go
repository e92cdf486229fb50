// Package grantsservice implements the signed mutation core of ENS Grants
// inside the funding context.
//
// The module owns funding rounds and grant proposals. Every mutation runs as
// verify → authorize → mutate: the signer is recovered from an EIP-712
// payload, checked against the declared address and the authorization
// policy, and only then written to the store. A new grant from a proposer
// supersedes that proposer's active grants in the same atomic store call.
//
// Signature recovery and policy decisions are reached through ports and
// wired from identity-access at the composition root.
package grantsservice
