package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  main_chat_id: -1001
  audit_chat_id: -1002
staff:
  owner_ids: [11, 22]
rpc:
  prompt_timeout: 30s
redis:
  owner_cache_ttl: 1m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Telegram.MainChatID != -1001 || cfg.Telegram.AuditChatID != -1002 {
		t.Fatalf("unexpected chat ids: %+v", cfg.Telegram)
	}
	if len(cfg.Staff.OwnerIDs) != 2 || cfg.Staff.OwnerIDs[1] != 22 {
		t.Fatalf("unexpected owner ids: %v", cfg.Staff.OwnerIDs)
	}
	if cfg.RPC.PromptTimeout != 30*time.Second {
		t.Fatalf("unexpected prompt timeout: %s", cfg.RPC.PromptTimeout)
	}
	if cfg.Redis.OwnerCacheTTL != time.Minute {
		t.Fatalf("unexpected owner cache ttl: %s", cfg.Redis.OwnerCacheTTL)
	}
	if cfg.RPC.AuditQueueSize != 256 {
		t.Fatalf("audit queue size default should stay 256, got %d", cfg.RPC.AuditQueueSize)
	}
	if cfg.Telegram.PollTimeoutSeconds != 30 {
		t.Fatalf("poll timeout default should stay 30, got %d", cfg.Telegram.PollTimeoutSeconds)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}
	if cfg.RPC.PromptTimeout != 120*time.Second {
		t.Fatalf("unexpected default prompt timeout: %s", cfg.RPC.PromptTimeout)
	}
	if cfg.RoleSync.Interval != time.Hour {
		t.Fatalf("unexpected default rolesync interval: %s", cfg.RoleSync.Interval)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OWNER_TG_IDS", "5, 6")
	t.Setenv("RPC_PROMPT_TIMEOUT", "2s")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Staff.OwnerIDs) != 2 || cfg.Staff.OwnerIDs[1] != 6 {
		t.Fatalf("unexpected owner ids: %v", cfg.Staff.OwnerIDs)
	}
	if cfg.RPC.PromptTimeout != 2*time.Second {
		t.Fatalf("unexpected prompt timeout: %s", cfg.RPC.PromptTimeout)
	}
	if !cfg.S3.UseSSL {
		t.Fatalf("expected s3 ssl override")
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OWNER_TG_IDS", "5,abc")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed owner ids")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("BOT_TOKEN", "123:abc")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error when jwt secret is left at its default in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"BOT_TOKEN",
		"POLL_TIMEOUT_SECONDS",
		"MAIN_CHAT_ID",
		"AUDIT_CHAT_ID",
		"BUG_HUNTERS_CHAT_ID",
		"OWNER_TG_IDS",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"REDIS_OWNER_CACHE_TTL",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_TOKEN_TTL",
		"RPC_PROMPT_TIMEOUT",
		"RPC_AUDIT_QUEUE_SIZE",
		"ROLESYNC_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}
