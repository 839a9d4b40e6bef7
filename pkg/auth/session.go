package auth

import (
	"sync/atomic"
	"time"
)

// CachedSession is a session token obtained by automatic login.
type CachedSession struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the session can still be used at now.
func (s *CachedSession) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// SessionCache holds at most one session. It lives only in memory and is
// shared by all requests.
type SessionCache struct {
	current atomic.Pointer[CachedSession]
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionCache creates an empty cache whose entries live for ttl.
func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{ttl: ttl, now: time.Now}
}

// SetClock replaces the time source.
func (c *SessionCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached token if one is present and unexpired.
func (c *SessionCache) Get() (string, bool) {
	s := c.current.Load()
	if !s.Valid(c.now()) {
		return "", false
	}
	return s.Token, true
}

// Set stores token with a fresh expiry.
func (c *SessionCache) Set(token string) {
	c.current.Store(&CachedSession{
		Token:     token,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Invalidate drops the cached session.
func (c *SessionCache) Invalidate() {
	c.current.Store(nil)
}
