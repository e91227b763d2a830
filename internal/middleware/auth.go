package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/williamhatcher/harmonyAuth/internal/auth"
	"github.com/williamhatcher/harmonyAuth/internal/identity"
)

// unexported, collision-proof context keys
type tokenContextKeyType struct{}
type identityContextKeyType struct{}

var (
	tokenKey    = tokenContextKeyType{}
	identityKey = identityContextKeyType{}
)

// TokenFromContext extracts the raw bearer token from context.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey).(string)
	return tok, ok
}

// IdentityFromContext extracts the resolved identity from context.
func IdentityFromContext(ctx context.Context) (*identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*identity.Identity)
	return id, ok
}

type AuthMiddleware struct {
	Extractor *auth.Extractor
	Resolver  *auth.Resolver
}

func NewAuthMiddleware(extractor *auth.Extractor, resolver *auth.Resolver) *AuthMiddleware {
	return &AuthMiddleware{Extractor: extractor, Resolver: resolver}
}

// RequireToken extracts the bearer credential per the configured
// carrier policy and attaches it to the request context. It does not
// validate the token.
func (a *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := a.Extractor.FromRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser extracts the credential and resolves it to an identity,
// attaching both to the request context.
func (a *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := a.Extractor.FromRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		id, err := a.Resolver.Resolve(r.Context(), token, false)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		ctx = context.WithValue(ctx, identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeError(w http.ResponseWriter, err error) {
	status, body := auth.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
