package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, name := range []string{
		"ENV_FILE", "SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "ADMIN_ADDRESSES",
		"GRANT_SUPERSEDE_SCOPE", "AUTO_MIGRATE", "OUTBOX_POLL_INTERVAL",
		"OUTBOX_BATCH_SIZE", "ENABLE_SWAGGER", "MAX_BODY_BYTES",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "ens-grants" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OutboxPollInterval != time.Second || cfg.OutboxBatchSize != 100 {
		t.Fatalf("unexpected outbox defaults: %+v", cfg)
	}
	if cfg.AutoMigrate || !cfg.EnableSwagger || len(cfg.AdminAddresses) != 0 {
		t.Fatalf("unexpected flag defaults: %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV_FILE", "")
	t.Setenv("ADMIN_ADDRESSES", " 0xAA , ,0xbb")
	t.Setenv("GRANT_SUPERSEDE_SCOPE", "proposer")
	t.Setenv("AUTO_MIGRATE", "yes")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AdminAddresses) != 2 || cfg.AdminAddresses[0] != "0xAA" || cfg.AdminAddresses[1] != "0xbb" {
		t.Fatalf("unexpected admin addresses: %v", cfg.AdminAddresses)
	}
	if cfg.SupersessionScope != "proposer" || !cfg.AutoMigrate {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.OutboxPollInterval != 250*time.Millisecond || cfg.OutboxBatchSize != 7 {
		t.Fatalf("unexpected outbox config: %+v", cfg)
	}
}

func TestLoadRejectsInvalidNumbers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV_FILE", "")
	t.Setenv("OUTBOX_BATCH_SIZE", "zero")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid batch size to fail")
	}
}

func TestLoadAppliesEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grants.env")
	if err := os.WriteFile(path, []byte("SERVICE_NAME=from-file\nHTTP_PORT=9090\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("SERVICE_NAME", "from-env")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("HTTP_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "from-env" {
		t.Fatalf("expected environment to win, got %q", cfg.ServiceName)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected port from env file, got %q", cfg.HTTPPort)
	}

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing explicit env file to fail")
	}
}
