package auth

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/williamhatcher/harmonyAuth/internal/cache"
	"github.com/williamhatcher/harmonyAuth/internal/discord"
	"github.com/williamhatcher/harmonyAuth/internal/identity"
	"github.com/williamhatcher/harmonyAuth/internal/logger"
	"github.com/williamhatcher/harmonyAuth/internal/metrics"
)

// DefaultRequiredScopes is the scope set enforced when none is configured.
var DefaultRequiredScopes = []string{"identify", "guilds"}

// fetchTimeout bounds the shared validate+fetch sequence, which is not
// tied to any single caller's context.
const fetchTimeout = 30 * time.Second

// ResolverOptions configures token resolution policy.
type ResolverOptions struct {
	// RequiredScopes must be a subset of every accepted token's grants.
	RequiredScopes []string

	// RetrieveGuilds controls whether the user's guilds are fetched
	// and cached alongside the profile.
	RetrieveGuilds bool

	// ClientID and ClientSecret identify the owning application.
	// Both are needed for upstream revocation; ClientID alone enables
	// ownership verification when VerifyClientID is set.
	ClientID       string
	ClientSecret   string
	VerifyClientID bool
}

// Resolver turns bearer tokens into cached identities. On a cache miss
// it validates the token against Discord, enforces scope policy,
// fetches the profile (and optionally guilds), and caches the result
// for the token's remaining lifetime.
type Resolver struct {
	cache    cache.Store
	discord  *discord.Client
	opts     ResolverOptions
	required map[string]struct{}
	group    singleflight.Group
}

func NewResolver(store cache.Store, client *discord.Client, opts ResolverOptions) *Resolver {
	if len(opts.RequiredScopes) == 0 {
		opts.RequiredScopes = DefaultRequiredScopes
	}

	required := make(map[string]struct{}, len(opts.RequiredScopes))
	for _, s := range opts.RequiredScopes {
		required[s] = struct{}{}
	}

	return &Resolver{
		cache:    store,
		discord:  client,
		opts:     opts,
		required: required,
	}
}

// Resolve returns the identity for the token, from cache when possible.
// forceFetch skips the cache lookup and overwrites any existing entry.
func (r *Resolver) Resolve(ctx context.Context, token string, forceFetch bool) (*identity.Identity, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	if !forceFetch {
		id, err := r.cache.Get(ctx, token)
		if err != nil {
			return nil, err
		}
		if id != nil {
			metrics.CacheHits.Inc()
			return id, nil
		}
		metrics.CacheMisses.Inc()
	}

	// Concurrent misses for the same token share one upstream
	// validate+fetch sequence. The shared fetch runs on a context
	// detached from the initiating caller so that one cancelled
	// request cannot fail other callers coalesced onto the flight;
	// each caller still honors its own context while waiting.
	ch := r.group.DoChan(token, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return r.fetchAndStore(fetchCtx, token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*identity.Identity), nil
	}
}

func (r *Resolver) fetchAndStore(ctx context.Context, token string) (*identity.Identity, error) {
	info, err := r.discord.GetTokenInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	if r.opts.VerifyClientID && r.opts.ClientID != "" && info.Application.ID != r.opts.ClientID {
		return nil, ErrClientMismatch
	}

	granted := make(map[string]struct{}, len(info.Scopes))
	for _, s := range info.Scopes {
		granted[s] = struct{}{}
	}
	for s := range r.required {
		if _, ok := granted[s]; !ok {
			return nil, &InsufficientScopeError{Required: r.opts.RequiredScopes}
		}
	}

	ttl := time.Until(info.Expires)

	user, err := r.discord.GetCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	guilds := []identity.Guild{}
	if r.opts.RetrieveGuilds {
		guilds, err = r.discord.GetCurrentUserGuilds(ctx, token)
		if err != nil {
			return nil, err
		}
		if guilds == nil {
			guilds = []identity.Guild{}
		}
	}

	id := &identity.Identity{User: *user, Guilds: guilds}

	// A token can expire between issuance and introspection. It was
	// still valid at validation time, so the resolution succeeds, but
	// an already-expired entry is never cached.
	if ttl > 0 {
		if err := r.cache.Set(ctx, token, id, ttl); err != nil {
			return nil, err
		}
	}

	logger.Info("token resolved", map[string]any{
		"user_id":     user.ID,
		"guilds":      len(guilds),
		"ttl_seconds": int(ttl.Seconds()),
		"cached":      ttl > 0,
	})

	return id, nil
}

// Revoke deletes the cached identity and, when the application
// credentials are configured, invalidates the token upstream. The
// cache deletion happens first and is unconditional.
func (r *Resolver) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := r.cache.Delete(ctx, token); err != nil {
		return err
	}

	metrics.Revocations.Inc()

	if r.opts.ClientID != "" && r.opts.ClientSecret != "" {
		return r.discord.RevokeToken(ctx, r.opts.ClientID, r.opts.ClientSecret, token)
	}
	return nil
}
