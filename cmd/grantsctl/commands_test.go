package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"ensgrants/contexts/identity-access/signature-service/adapters/eip712"
	sigentities "ensgrants/contexts/identity-access/signature-service/domain/entities"
)

const testKey = "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("grantsctl %v: %v", args, err)
	}
	return out.Bytes()
}

func TestKeygenPrintsMatchingAddress(t *testing.T) {
	var keys map[string]string
	if err := json.Unmarshal(run(t, "keygen"), &keys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(keys["address"]) != 42 || len(keys["private_key"]) != 66 {
		t.Fatalf("unexpected keygen output: %v", keys)
	}
}

func TestSignGrantProducesRecoverableBody(t *testing.T) {
	out := run(t, "sign", "grant", "--key", testKey, "--round-id", "7", "--title", "t", "--description", "d", "--full-text", "f")

	var body struct {
		Method    string            `json:"method"`
		GrantData map[string]string `json:"grantData"`
		Signature string            `json:"signature"`
	}
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Method != "create_grant" || body.GrantData["roundId"] != "7" {
		t.Fatalf("unexpected body: %s", out)
	}

	recovered, err := eip712.Recoverer{}.Recover(context.Background(), sigentities.TypedData{
		Domain: sigentities.CanonicalDomain,
		Schema: sigentities.GrantSchemaV2,
		Message: map[string]any{
			"address":     body.GrantData["address"],
			"roundId":     big.NewInt(7),
			"title":       "t",
			"description": "d",
			"fullText":    "f",
		},
	}, body.Signature)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered.String() != body.GrantData["address"] {
		t.Fatalf("expected %s, got %s", body.GrantData["address"], recovered)
	}
}

func TestSignRoundRequiresKey(t *testing.T) {
	t.Setenv(signerKeyEnv, "")
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"sign", "round", "--token", "0xc18360217d8f7ab5e7c516566761ea12ce7f9d72"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing key to fail")
	}
}

func TestSignRoundDeclaresSchemaVersion(t *testing.T) {
	out := run(t, "sign", "round", "--key", testKey, "--token", "0xc18360217d8f7ab5e7c516566761ea12ce7f9d72",
		"--amount", "0x10", "--schema-version", "1")

	var body map[string]any
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["schemaVersion"] != "1" {
		t.Fatalf("expected schemaVersion 1, got %v", body["schemaVersion"])
	}
	data := body["roundData"].(map[string]any)
	if data["allocation_token_amount"] != "16" {
		t.Fatalf("expected hex amount to be normalized, got %v", data["allocation_token_amount"])
	}
}
