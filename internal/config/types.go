package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the full process configuration.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "2m").
// The file may be YAML or JSON; unknown keys are rejected so stale
// configs are caught early.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Catalog   CatalogConfig   `json:"catalog"`
	Watcher   WatcherConfig   `json:"watcher"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
	Keepalive KeepaliveConfig `json:"keepalive,omitempty"`
}

type TelegramConfig struct {
	// Token may be left empty in the file and supplied via BOT_TOKEN.
	Token string `json:"token,omitempty"`
	// ChannelID is the chat that receives content notifications.
	ChannelID int64 `json:"channel_id"`
	// AdminUserIDs may run /force_update and receive mirrored logs.
	AdminUserIDs []int64 `json:"admin_user_ids,omitempty"`
	// AdminLogChatID receives mirrored warning/error log lines (0 = off).
	AdminLogChatID int64 `json:"admin_log_chat_id,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

// CatalogConfig points at the remote course catalog, reached through a
// request-rewriting proxy.
type CatalogConfig struct {
	ProxyBase string `json:"proxy_base"`
	APIHost   string `json:"api_host"`
	BatchID   string `json:"batch_id"`

	// PlayerBase is the external player endpoint streaming links are
	// wrapped with.
	PlayerBase string `json:"player_base,omitempty"`

	RetryCount int `json:"retry_count,omitempty"`
	// RetryBackoff is the fixed wait between attempts. Default "5s".
	RetryBackoff string `json:"retry_backoff,omitempty"`
	// RequestTimeout bounds each individual attempt. Default "10s".
	RequestTimeout string `json:"request_timeout,omitempty"`
}

type WatcherConfig struct {
	// Schedule is a five-field cron expression. Default "0 */12 * * *".
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	// SendDelay is the pause after each send attempt. Default "2s".
	SendDelay string `json:"send_delay,omitempty"`
}

type LoggingConfig struct {
	Level   string       `json:"level"`
	Console bool         `json:"console"`
	File    LoggingFile  `json:"file"`
	Admin   LoggingAdmin `json:"admin"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingAdmin mirrors selected log lines to telegram.admin_log_chat_id.
type LoggingAdmin struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig controls the completion ledger backend.
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "file": dependency-free journal + snapshot files
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// KeepaliveConfig controls the tiny liveness HTTP server some hosts
// require to keep the process from being idled out.
type KeepaliveConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default ":3000"
}

// Validate checks the fields no component can default for.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (file or BOT_TOKEN)")
	}
	if c.Telegram.ChannelID == 0 {
		return errors.New("telegram.channel_id is required")
	}
	if strings.TrimSpace(c.Catalog.ProxyBase) == "" {
		return errors.New("catalog.proxy_base is required")
	}
	if strings.TrimSpace(c.Catalog.APIHost) == "" {
		return errors.New("catalog.api_host is required")
	}
	if strings.TrimSpace(c.Catalog.BatchID) == "" {
		return errors.New("catalog.batch_id is required")
	}
	for _, f := range []struct{ path, raw string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"catalog.retry_backoff", c.Catalog.RetryBackoff},
		{"catalog.request_timeout", c.Catalog.RequestTimeout},
		{"watcher.send_delay", c.Watcher.SendDelay},
		{"storage.busy_timeout", c.Storage.BusyTimeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	if c.Catalog.RetryCount < 0 {
		return fmt.Errorf("catalog.retry_count must be >= 0")
	}
	return nil
}
