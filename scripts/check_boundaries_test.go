package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func rulesFor(t *testing.T, root string) []string {
	t.Helper()
	violations, err := collectViolations(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	rules := make([]string, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func TestLayeredTreePasses(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "contexts/funding/grants-service/ports/ports.go", `package ports

import (
	"context"

	_ "ensgrants/contexts/funding/grants-service/domain/entities"
	_ "ensgrants/contracts/gen/events/v1"
)

var _ context.Context
`)
	writeSource(t, root, "contexts/funding/grants-service/adapters/postgres/repository.go", `package postgres

import (
	_ "ensgrants/contexts/funding/grants-service/ports"
	_ "gorm.io/gorm"
)
`)
	writeSource(t, root, "contexts/funding/grants-service/module.go", `package grantsservice

import _ "ensgrants/contexts/funding/grants-service/adapters/postgres"
`)
	writeSource(t, root, "internal/app/bootstrap/bootstrap.go", `package bootstrap

import (
	_ "ensgrants/contexts/funding/grants-service"
	_ "ensgrants/contexts/identity-access/signature-service"
)
`)
	// Test files and underscore directories are out of scope.
	writeSource(t, root, "contexts/funding/grants-service/application/commands/commands_test.go", `package commands

import _ "ensgrants/contexts/funding/grants-service/adapters/memory"
`)
	writeSource(t, root, "_examples/other/main.go", `package main

import _ "ensgrants/internal/app/bootstrap"
`)

	if rules := rulesFor(t, root); len(rules) != 0 {
		t.Fatalf("expected no violations, got %v", rules)
	}
}

func TestContextRules(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
		rule string
	}{
		{
			name: "cross service",
			file: "contexts/identity-access/signature-service/application/verifier.go",
			body: "package application\n\nimport _ \"ensgrants/contexts/funding/grants-service/ports\"\n",
			rule: "services must not import other services",
		},
		{
			name: "ports reaching adapters",
			file: "contexts/funding/grants-service/ports/ports.go",
			body: "package ports\n\nimport _ \"ensgrants/contexts/funding/grants-service/adapters/memory\"\n",
			rule: "ports must not import adapters",
		},
		{
			name: "domain reaching runtime",
			file: "contexts/funding/grants-service/domain/entities/round.go",
			body: "package entities\n\nimport _ \"ensgrants/internal/platform/config\"\n",
			rule: "contexts must not import runtime packages",
		},
		{
			name: "third party in application",
			file: "contexts/funding/grants-service/application/commands/create_round.go",
			body: "package commands\n\nimport _ \"gorm.io/gorm\"\n",
			rule: "application may only use the standard library",
		},
		{
			name: "domain depending on contracts",
			file: "contexts/funding/grants-service/domain/entities/grant.go",
			body: "package entities\n\nimport _ \"ensgrants/contracts/gen/events/v1\"\n",
			rule: "domain must not depend on event contracts",
		},
		{
			name: "platform importing app wiring",
			file: "internal/platform/httpserver/server.go",
			body: "package httpserver\n\nimport _ \"ensgrants/internal/app/bootstrap\"\n",
			rule: "platform must not import app wiring",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeSource(t, root, tc.file, tc.body)
			rules := rulesFor(t, root)
			if len(rules) != 1 || rules[0] != tc.rule {
				t.Fatalf("expected [%s], got %v", tc.rule, rules)
			}
		})
	}
}

func TestOnlyCompositionRootsWireSeveralServices(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "internal/platform/httpserver/server.go", `package httpserver

import (
	_ "ensgrants/contexts/funding/grants-service"
	_ "ensgrants/contexts/funding/grants-service/domain/errors"
	_ "ensgrants/contexts/identity-access/signature-service"
)
`)

	violations, err := collectViolations(root)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(violations) != 1 || violations[0].Import != "ensgrants/contexts/identity-access/signature-service" {
		t.Fatalf("expected the second service import to be flagged, got %+v", violations)
	}
}

func TestUnparsableSourceIsAnError(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "contexts/funding/grants-service/ports/ports.go", "package ports\n\nimport (\n")
	if _, err := collectViolations(root); err == nil {
		t.Fatalf("expected parse error")
	}
}
