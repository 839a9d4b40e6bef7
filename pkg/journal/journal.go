package journal

import (
	"context"
	"fmt"

	"opensign-hq/relay/pkg/config"
)

// Journal bundles the store, recorder and pruner built from configuration.
type Journal struct {
	*Recorder
	Pruner *Pruner
}

// New builds the journal described by cfg. It returns nil, nil when the
// journal is disabled.
func New(cfg *config.JournalConfig, opts ...RecorderOption) (*Journal, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal store: %w", err)
	}

	return &Journal{
		Recorder: NewRecorder(store, cfg.Buffer, opts...),
		Pruner:   NewPruner(store, cfg.Retention.Days, cfg.Retention.PruneSchedule),
	}, nil
}

// Start starts the prune scheduler.
func (j *Journal) Start(ctx context.Context) error {
	return j.Pruner.Start(ctx)
}

// Ping reports the health of the store.
func (j *Journal) Ping(ctx context.Context) error {
	return j.store.Ping(ctx)
}

// Close stops the pruner, drains pending writes and closes the store.
func (j *Journal) Close() error {
	j.Pruner.Stop()
	if err := j.Recorder.Close(); err != nil {
		return err
	}
	return j.store.Close()
}
