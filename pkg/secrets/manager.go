package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrNotFound is returned when no provider holds a secret.
var ErrNotFound = errors.New("secret not found")

var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager tries providers in order until one returns the secret.
type Manager struct {
	providers []Provider
}

// NewManager creates a manager over providers, in priority order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{providers: providers}
}

// GetSecret returns the first value found for name.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, p := range m.providers {
		value, err := p.GetSecret(ctx, name)
		if err == nil {
			slog.Debug("secret resolved", "provider", p.Name(), "name", redactName(name))
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} in value with the secret. A value
// without references is returned unchanged. On failure the error names
// every reference that could not be resolved.
func (m *Manager) Resolve(ctx context.Context, value string) (string, error) {
	var failures []string

	out := secretRefRegex.ReplaceAllStringFunc(value, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]
		secret, err := m.GetSecret(ctx, name)
		if err != nil {
			failures = append(failures, err.Error())
			return match
		}
		return secret
	})

	if len(failures) > 0 {
		return "", fmt.Errorf("failed to resolve secret references: %s", strings.Join(failures, "; "))
	}
	return out, nil
}

// HasReference reports whether value contains a ${secret:name} reference.
func HasReference(value string) bool {
	return secretRefRegex.MatchString(value)
}

// redactName keeps secret names recognisable in debug logs without
// printing them whole.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
