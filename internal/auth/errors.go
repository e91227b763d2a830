package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/williamhatcher/harmonyAuth/internal/cache"
	"github.com/williamhatcher/harmonyAuth/internal/discord"
)

// Resolution errors.
var (
	// ErrNotAuthenticated means no usable credential was presented.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrClientMismatch means the token belongs to a different
	// application than the one configured.
	ErrClientMismatch = errors.New("invalid client ID for token provided")
)

// InsufficientScopeError means the token's granted scopes do not cover
// the configured required set.
type InsufficientScopeError struct {
	Required []string
}

func (e *InsufficientScopeError) Error() string {
	return fmt.Sprintf("invalid scopes, please reauthorize with %s", strings.Join(e.Required, ", "))
}

// HTTPStatus maps a resolution error onto the boundary response.
// Discord API errors propagate their upstream status and body verbatim.
func HTTPStatus(err error) (int, any) {
	var apiErr *discord.APIError
	var scopeErr *InsufficientScopeError

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusForbidden, map[string]any{"detail": "Not authenticated"}

	case errors.Is(err, ErrClientMismatch):
		return http.StatusBadRequest, map[string]any{"detail": "Invalid client ID for token provided"}

	case errors.As(err, &scopeErr):
		return http.StatusBadRequest, map[string]any{"detail": scopeErr.Error()}

	case errors.As(err, &apiErr):
		return apiErr.Status, map[string]any{"detail": apiErr.Body}

	case errors.Is(err, discord.ErrUnavailable):
		return http.StatusServiceUnavailable, map[string]any{"detail": "Discord unavailable"}

	case errors.Is(err, cache.ErrUnavailable):
		return http.StatusServiceUnavailable, map[string]any{"detail": "Cache unavailable"}

	default:
		return http.StatusInternalServerError, map[string]any{"detail": "Internal error"}
	}
}
