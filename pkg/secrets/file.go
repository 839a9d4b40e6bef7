package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider loads secrets from individual files in a directory. A
// secret file must be a regular file with mode 0600 or 0400.
type FileProvider struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewFileProvider creates a provider for dir, which must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}

	return &FileProvider{
		dir:    dir,
		cache:  make(map[string]string),
		stopCh: make(chan struct{}),
		logger: slog.Default().With("component", "secrets.file"),
	}, nil
}

// GetSecret reads the file dir/name. Values are cached until the
// directory changes.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	value, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return value, nil
	}

	path, err := p.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (file)", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - path is confined to dir above
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value = strings.TrimSpace(string(data))

	p.mu.Lock()
	p.cache[name] = value
	p.mu.Unlock()
	return value, nil
}

// path joins name to dir and rejects names that escape it.
func (p *FileProvider) path(name string) (string, error) {
	absDir, err := filepath.Abs(p.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve secrets dir: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(p.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve secret path: %w", err)
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid secret name %q: outside secrets dir", name)
	}
	return absPath, nil
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}

// Refresh drops cached values so the next read goes to disk.
func (p *FileProvider) Refresh() {
	p.mu.Lock()
	p.cache = make(map[string]string)
	p.mu.Unlock()
}

// Watch refreshes the cache whenever a file in the directory is written,
// created or renamed, then calls onChange. Kubernetes rotates mounted
// secrets by swapping a symlinked directory, which shows up as a create.
func (p *FileProvider) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(p.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch secrets dir: %w", err)
	}
	p.watcher = watcher

	go p.watchLoop(onChange)
	p.logger.Info("watching secrets dir", "path", p.dir)
	return nil
}

func (p *FileProvider) watchLoop(onChange func()) {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			p.logger.Debug("secret file changed",
				"file", filepath.Base(event.Name),
				"op", event.Op.String(),
			)
			p.Refresh()
			if onChange != nil {
				onChange()
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("secrets watcher error", "error", err)

		case <-p.stopCh:
			return
		}
	}
}

// Close stops the watcher, if any.
func (p *FileProvider) Close() error {
	var err error
	p.stopOnce.Do(func() {
		close(p.stopCh)
		if p.watcher != nil {
			err = p.watcher.Close()
		}
	})
	return err
}
