package secrets

import (
	"context"
	"testing"
	"time"
)

func TestFileProvider_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "password", "old", 0o600)

	p, err := NewFileProvider(dir)
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}
	defer p.Close()

	changed := make(chan struct{}, 16)
	if err := p.Watch(func() { changed <- struct{}{} }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx := context.Background()
	if v, _ := p.GetSecret(ctx, "password"); v != "old" {
		t.Fatalf("GetSecret() = %q, want old", v)
	}

	writeSecret(t, dir, "password", "rotated", 0o600)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after rewrite")
	}
	if v, _ := p.GetSecret(ctx, "password"); v != "rotated" {
		t.Errorf("GetSecret() after change = %q, want rotated", v)
	}
}

func TestFileProvider_CloseIdempotent(t *testing.T) {
	p, err := NewFileProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}
	if err := p.Watch(nil); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
