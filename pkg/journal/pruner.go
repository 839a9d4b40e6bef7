package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes entries older than the retention window, either on demand
// or on a cron schedule.
type Pruner struct {
	store     Store
	retention time.Duration
	schedule  string
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	logger  *slog.Logger
}

// NewPruner creates a pruner keeping retentionDays of entries. An empty
// schedule disables scheduled runs; Prune still works.
func NewPruner(store Store, retentionDays int, schedule string) *Pruner {
	return &Pruner{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		now:       time.Now,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "journal.pruner"),
	}
}

// Prune deletes entries older than the retention window.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	cutoff := p.now().Add(-p.retention)
	deleted, err := p.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return deleted, nil
}

// Start schedules pruning. The scheduler stops when ctx is cancelled or
// Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if p.running {
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}
	if _, err := p.cron.AddFunc(p.schedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("journal pruner started",
		"schedule", p.schedule,
		"retention", p.retention,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

func (p *Pruner) run(ctx context.Context) {
	deleted, err := p.Prune(ctx)
	if err != nil {
		p.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	p.logger.Debug("scheduled pruning completed", "deleted_count", deleted)
}

// Stop halts the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("journal pruner stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextRun returns the next scheduled prune, or nil when not scheduled.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if !p.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
