package journal

import (
	"context"
	"fmt"
	"time"

	"opensign-hq/relay/pkg/config"
)

// Store persists journal entries.
type Store interface {
	// Append stores one entry.
	Append(ctx context.Context, e *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// PruneBefore deletes entries older than cutoff and returns how many
	// were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	Close() error
}

// OpenStore opens the backend selected by cfg.
func OpenStore(cfg *config.JournalConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Memory.Capacity), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteOptions{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}
