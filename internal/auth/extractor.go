package auth

import (
	"errors"
	"net/http"
	"strings"
)

// DefaultCookieName is the cookie consulted when cookie extraction is
// enabled and no other name is configured.
const DefaultCookieName = "token"

// Extractor decides which transport carries the bearer token for a
// request: the Authorization header, a cookie, or both with the
// header preferred.
type Extractor struct {
	useHeader  bool
	useCookie  bool
	cookieName string
}

// NewExtractor builds an extractor for the configured carriers.
// At least one carrier must be enabled.
func NewExtractor(useHeader, useCookie bool, cookieName string) (*Extractor, error) {
	if !useHeader && !useCookie {
		return nil, errors.New("auth: header and cookie extraction are both disabled, enable at least one")
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Extractor{
		useHeader:  useHeader,
		useCookie:  useCookie,
		cookieName: cookieName,
	}, nil
}

// FromRequest returns the raw token string or ErrNotAuthenticated.
// The header wins whenever it is enabled and present; the cookie is
// only consulted as a fallback when cookie extraction is enabled.
func (e *Extractor) FromRequest(r *http.Request) (string, error) {
	if e.useHeader {
		if tok := bearerToken(r); tok != "" {
			return tok, nil
		}
		if !e.useCookie {
			return "", ErrNotAuthenticated
		}
	}

	cookie, err := r.Cookie(e.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNotAuthenticated
	}
	return cookie.Value, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
