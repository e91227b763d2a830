package cache

import (
	"context"
	"errors"
	"time"

	"github.com/williamhatcher/harmonyAuth/internal/identity"
)

// ErrUnavailable reports a cache backend failure. A backend failure
// is never reported as a miss.
var ErrUnavailable = errors.New("cache unavailable")

// Store defines how resolved identities are cached by token.
// A miss is (nil, nil); errors are backend failures only.
type Store interface {
	Get(ctx context.Context, token string) (*identity.Identity, error)
	Set(ctx context.Context, token string, id *identity.Identity, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}
