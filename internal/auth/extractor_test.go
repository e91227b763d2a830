package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(header, cookie, cookieName string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	return r
}

func TestNewExtractorBothDisabled(t *testing.T) {
	_, err := NewExtractor(false, false, "")
	assert.Error(t, err)
}

func TestExtractorDefaultCookieName(t *testing.T) {
	e, err := NewExtractor(false, true, "")
	require.NoError(t, err)

	tok, err := e.FromRequest(newRequest("", "abc", DefaultCookieName))
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestExtractorPolicy(t *testing.T) {
	tests := []struct {
		name      string
		useHeader bool
		useCookie bool
		header    string
		cookie    string
		wantToken string
		wantErr   error
	}{
		{
			name:      "header only, present",
			useHeader: true,
			header:    "Bearer tok-1",
			wantToken: "tok-1",
		},
		{
			name:      "header only, absent",
			useHeader: true,
			wantErr:   ErrNotAuthenticated,
		},
		{
			name:      "header only, cookie ignored",
			useHeader: true,
			cookie:    "cookie-tok",
			wantErr:   ErrNotAuthenticated,
		},
		{
			name:      "header preferred over cookie",
			useHeader: true,
			useCookie: true,
			header:    "Bearer header-tok",
			cookie:    "cookie-tok",
			wantToken: "header-tok",
		},
		{
			name:      "falls through to cookie",
			useHeader: true,
			useCookie: true,
			cookie:    "cookie-tok",
			wantToken: "cookie-tok",
		},
		{
			name:      "both enabled, neither present",
			useHeader: true,
			useCookie: true,
			wantErr:   ErrNotAuthenticated,
		},
		{
			name:      "cookie only, present",
			useCookie: true,
			cookie:    "cookie-tok",
			wantToken: "cookie-tok",
		},
		{
			name:      "cookie only, header ignored",
			useCookie: true,
			header:    "Bearer header-tok",
			wantErr:   ErrNotAuthenticated,
		},
		{
			name:      "case-insensitive bearer scheme",
			useHeader: true,
			header:    "bearer tok-2",
			wantToken: "tok-2",
		},
		{
			name:      "malformed authorization header",
			useHeader: true,
			header:    "Basic dXNlcjpwYXNz",
			wantErr:   ErrNotAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExtractor(tt.useHeader, tt.useCookie, "session")
			require.NoError(t, err)

			tok, err := e.FromRequest(newRequest(tt.header, tt.cookie, "session"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, tok)
		})
	}
}
