package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
telegram:
  token: "123:abc"
  channel_id: -1001234567890
  admin_user_ids: [42]
catalog:
  proxy_base: "https://proxy.example.com/fetch"
  api_host: "https://courses.example.com"
  batch_id: "40589"
  retry_backoff: "5s"
watcher:
  schedule: "0 */12 * * *"
  send_delay: "2s"
logging:
  level: info
  console: true
  file:
    enabled: false
    path: ""
  admin:
    enabled: false
    min_level: warn
    rate_per_sec: 1
storage:
  driver: sqlite
  path: ./data/ledger.db
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", validYAML)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.ChannelID != -1001234567890 {
		t.Fatalf("channel_id = %d", cfg.Telegram.ChannelID)
	}
	if cfg.Catalog.BatchID != "40589" {
		t.Fatalf("batch_id = %q", cfg.Catalog.BatchID)
	}
	if cfg.Watcher.Schedule != "0 */12 * * *" {
		t.Fatalf("schedule = %q", cfg.Watcher.Schedule)
	}
	d, err := ParseDurationOrDefault("watcher.send_delay", cfg.Watcher.SendDelay, 0)
	if err != nil || d != 2*time.Second {
		t.Fatalf("send_delay = %v (%v)", d, err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "config.yaml", validYAML+"\nlegacy_block:\n  enabled: true\n")
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown top-level key")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	bad := strings.Replace(validYAML, `retry_backoff: "5s"`, `retry_backoff: "five seconds"`, 1)
	path := writeConfig(t, "config.yaml", bad)
	_, err := NewManager(path).Parse()
	if err == nil || !strings.Contains(err.Error(), "catalog.retry_backoff") {
		t.Fatalf("expected retry_backoff error, got %v", err)
	}
}

func TestParseRequiresToken(t *testing.T) {
	missing := strings.Replace(validYAML, `token: "123:abc"`, `token: ""`, 1)
	path := writeConfig(t, "config.yaml", missing)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error when token missing everywhere")
	}
}

func TestEnvOverrides(t *testing.T) {
	missing := strings.Replace(validYAML, `token: "123:abc"`, `token: ""`, 1)
	path := writeConfig(t, "config.yaml", missing)

	t.Setenv("BOT_TOKEN", "999:zzz")
	t.Setenv("CRON_SCHEDULE", "*/30 * * * *")

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "999:zzz" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Watcher.Schedule != "*/30 * * * *" {
		t.Fatalf("schedule = %q, want env override", cfg.Watcher.Schedule)
	}
}

func TestParseJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"telegram": {"token": "123:abc", "channel_id": -100},
		"catalog": {
			"proxy_base": "https://proxy.example.com/fetch",
			"api_host": "https://courses.example.com",
			"batch_id": "40589"
		},
		"watcher": {},
		"logging": {"level": "info", "console": true,
			"file": {"enabled": false, "path": ""},
			"admin": {"enabled": false, "min_level": "warn", "rate_per_sec": 1}},
		"storage": {"driver": "file", "path": "./ledger"}
	}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Storage.Driver != "file" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
}
