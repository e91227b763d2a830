package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/williamhatcher/harmonyAuth/internal/identity"
	"github.com/williamhatcher/harmonyAuth/internal/metrics"
)

// DefaultBaseURL is the Discord API base. Overridable to point at a
// proxy such as twilight-http-proxy.
const DefaultBaseURL = "https://discord.com/api/v10"

// ErrUnavailable means the request never produced an HTTP response
// (connection refused, DNS failure, timeout).
var ErrUnavailable = errors.New("discord unavailable")

// APIError is a non-2xx response from Discord. Body holds the decoded
// JSON payload when the response is valid JSON, otherwise the raw text.
type APIError struct {
	Status int
	Body   any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api error: status %d: %v", e.Status, e.Body)
}

// Client is a thin wrapper over the Discord HTTP API. It is stateless
// and safe for concurrent use; construct one per process.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Request issues an authenticated call and returns the decoded JSON
// body, or the raw text when the body is not JSON. The bearer and
// accept headers are set unless the caller overrides them.
func (c *Client) Request(ctx context.Context, method, path, token string, body io.Reader, headers map[string]string) (any, error) {
	raw, err := c.do(ctx, method, path, token, body, headers)
	if err != nil {
		return nil, err
	}
	return jsonOrText(raw), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(path, "error").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status: resp.StatusCode,
			Body:   jsonOrText(raw),
		}
	}

	return raw, nil
}

// jsonOrText mirrors Discord's error bodies: JSON when parseable,
// otherwise the raw text.
func jsonOrText(raw []byte) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return string(raw)
	}
	return decoded
}

// TokenInfo is the result of token introspection via GET /oauth2/@me.
type TokenInfo struct {
	Application struct {
		ID string `json:"id"`
	} `json:"application"`
	Scopes  []string  `json:"scopes"`
	Expires time.Time `json:"expires"`
}

// GetTokenInfo introspects the token. A successful response implies
// the token was valid at the time of the call.
func (c *Client) GetTokenInfo(ctx context.Context, token string) (*TokenInfo, error) {
	raw, err := c.do(ctx, http.MethodGet, "/oauth2/@me", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var info TokenInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode token info: %w", err)
	}
	return &info, nil
}

// GetCurrentUser fetches the canonical user profile. The introspection
// endpoint does not carry enough user detail, so this is a separate call.
func (c *Client) GetCurrentUser(ctx context.Context, token string) (*identity.User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users/@me", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var user identity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// GetCurrentUserGuilds fetches the partial guilds the token can see.
func (c *Client) GetCurrentUserGuilds(ctx context.Context, token string) ([]identity.Guild, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users/@me/guilds", token, nil, nil)
	if err != nil {
		return nil, err
	}

	var guilds []identity.Guild
	if err := json.Unmarshal(raw, &guilds); err != nil {
		return nil, fmt.Errorf("decode guilds: %w", err)
	}
	return guilds, nil
}

// RevokeToken invalidates the token upstream. Requires the application
// credentials; the bearer header is not needed for this endpoint.
func (c *Client) RevokeToken(ctx context.Context, clientID, clientSecret, token string) error {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"token":         {token},
	}

	_, err := c.do(ctx, http.MethodPost, "/oauth2/token/revoke", token,
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	return err
}
