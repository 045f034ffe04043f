package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "coursewatch/pkg/logx"
)

// Config configures the ledger backend.
//
// Driver values:
//   - "sqlite" (or "sqlite3"): SQLite database file
//   - "file": journal + snapshot files
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the completion ledger.
//
// Load returns a full snapshot used for a cycle's filtering decisions.
// MarkDone durably records one id; marking an already-marked id is a
// no-op success. A MarkDone failure must be surfaced so the caller can
// treat the item as unconfirmed (re-sent next cycle).
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	MarkDone(ctx context.Context, id string) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "file":
		return openFile(cfg, log)
	default:
		return nil, errors.New("unknown ledger driver: " + cfg.Driver)
	}
}
