package secrets

import "context"

// Provider retrieves secrets from one backend.
type Provider interface {
	// GetSecret returns the value of the named secret, or an error if the
	// backend does not hold it.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the backend in logs ("env", "file").
	Name() string
}
