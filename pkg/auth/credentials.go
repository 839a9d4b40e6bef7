package auth

import (
	"net/http"
	"strings"
)

// SessionTokenHeader carries a Parse session token.
//
// #nosec G101 - header name, not a credential
const SessionTokenHeader = "X-Parse-Session-Token"

// Credentials are the tokens presented by the inbound caller.
type Credentials struct {
	// Cookie is the session token from the session cookie.
	Cookie string

	// Header is the session token from X-Parse-Session-Token.
	Header string
}

// Extract reads the caller's tokens from r. A cookie value of "undefined"
// or "null", which browser clients write after logout, counts as absent.
func Extract(r *http.Request, cookieName string) Credentials {
	var creds Credentials
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			creds.Cookie = cleanToken(c.Value)
		}
	}
	creds.Header = cleanToken(r.Header.Get(SessionTokenHeader))
	return creds
}

func cleanToken(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "undefined", "null":
		return ""
	}
	return v
}

// Source names where a resolved credential came from.
type Source string

const (
	SourceCookie    Source = "cookie"
	SourceHeader    Source = "header"
	SourceCached    Source = "cached"
	SourceLogin     Source = "login"
	SourceMasterKey Source = "master_key"
	SourceNone      Source = "none"
)
