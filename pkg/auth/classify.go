package auth

import (
	"net/http"
	"strings"

	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/upstream"
)

// OperationClass is the credential class of a forwarded call.
type OperationClass int

const (
	// Ordinary calls use the caller's session when available.
	Ordinary OperationClass = iota

	// ClassOperation is a write to a sensitive class. It must carry a
	// session token.
	ClassOperation

	// Privileged calls (user administration, PDF signing) prefer the
	// master key.
	Privileged
)

// String returns the label used in logs and metrics.
func (c OperationClass) String() string {
	switch c {
	case Privileged:
		return "privileged"
	case ClassOperation:
		return "class_operation"
	default:
		return "ordinary"
	}
}

// Classifier maps forwarded calls to operation classes.
type Classifier struct {
	privileged []string
	sensitive  map[string]struct{}
}

// NewClassifier creates a classifier from configuration.
func NewClassifier(cfg config.AuthConfig) *Classifier {
	sensitive := make(map[string]struct{}, len(cfg.SensitiveClasses))
	for _, c := range cfg.SensitiveClasses {
		sensitive[c] = struct{}{}
	}
	return &Classifier{
		privileged: cfg.PrivilegedPaths,
		sensitive:  sensitive,
	}
}

// Classify returns the class of method on path, where path is relative to
// the mount prefix (e.g. "classes/contracts_Document").
func (c *Classifier) Classify(method, path string) OperationClass {
	if upstream.MatchPath(path, c.privileged) {
		return Privileged
	}

	if method != http.MethodPost && method != http.MethodPut {
		return Ordinary
	}
	rest, ok := strings.CutPrefix(strings.Trim(path, "/"), "classes/")
	if !ok {
		return Ordinary
	}
	class, _, _ := strings.Cut(rest, "/")
	if _, ok := c.sensitive[class]; ok {
		return ClassOperation
	}
	return Ordinary
}
