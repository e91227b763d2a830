package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamhatcher/harmonyAuth/internal/auth"
	"github.com/williamhatcher/harmonyAuth/internal/cache"
	"github.com/williamhatcher/harmonyAuth/internal/discord"
	"github.com/williamhatcher/harmonyAuth/internal/middleware"
)

// fakeAPI is a minimal Discord double for router-level tests.
type fakeAPI struct {
	srv *httptest.Server

	mu          sync.Mutex
	introspects int
	revokes     int

	scopes           []string
	introspectStatus int
	introspectBody   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{scopes: []string{"identify", "guilds"}}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/@me", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.introspects++
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.introspectStatus != 0 {
			w.WriteHeader(f.introspectStatus)
			fmt.Fprint(w, f.introspectBody)
			return
		}

		scopes, _ := json.Marshal(f.scopes)
		expires := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
		fmt.Fprintf(w, `{"application":{"id":"1234"},"scopes":%s,"expires":%q}`, scopes, expires)
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"42","username":"Nelly","discriminator":"1337"}`)
	})
	mux.HandleFunc("/users/@me/guilds", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/oauth2/token/revoke", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.revokes++
		f.mu.Unlock()
		fmt.Fprint(w, "{}")
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) introspectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.introspects
}

func newTestRouter(t *testing.T, f *fakeAPI, useHeader, useCookie bool) (*gin.Engine, *miniredis.Miniredis) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	extractor, err := auth.NewExtractor(useHeader, useCookie, "token")
	require.NoError(t, err)

	resolver := auth.NewResolver(
		cache.NewRedisStore(client),
		discord.NewClient(f.srv.URL),
		auth.ResolverOptions{RetrieveGuilds: true},
	)

	router := gin.New()
	NewHandler(resolver).RegisterRoutes(router, middleware.NewAuthMiddleware(extractor, resolver))
	return router, mr
}

func doRequest(router *gin.Engine, method, path, bearer, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookie})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCurrentUserWithoutCredential(t *testing.T) {
	f := newFakeAPI(t)
	router, _ := newTestRouter(t, f, true, false)

	w := doRequest(router, http.MethodGet, "/auth/@me", "", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())
	assert.Equal(t, 0, f.introspectCount())
}

func TestCurrentUserWithBearerHeader(t *testing.T) {
	f := newFakeAPI(t)
	router, _ := newTestRouter(t, f, true, false)

	w := doRequest(router, http.MethodGet, "/auth/@me", "tok", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	user := body["user"].(map[string]any)
	assert.Equal(t, "42", user["id"])
	assert.Equal(t, []any{}, body["guilds"])

	// second request is served from cache
	w = doRequest(router, http.MethodGet, "/auth/@me", "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.introspectCount())
}

func TestCurrentUserWithCookie(t *testing.T) {
	f := newFakeAPI(t)
	router, _ := newTestRouter(t, f, false, true)

	w := doRequest(router, http.MethodGet, "/auth/@me", "", "cookie-tok")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutInvalidatesCache(t *testing.T) {
	f := newFakeAPI(t)
	router, mr := newTestRouter(t, f, true, false)

	doRequest(router, http.MethodGet, "/auth/@me", "tok", "")
	require.True(t, mr.Exists("tok"))

	w := doRequest(router, http.MethodPost, "/auth/logout", "tok", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, mr.Exists("tok"))

	// next lookup behaves as a miss
	doRequest(router, http.MethodGet, "/auth/@me", "tok", "")
	assert.Equal(t, 2, f.introspectCount())
}

func TestRefreshBypassesCache(t *testing.T) {
	f := newFakeAPI(t)
	router, _ := newTestRouter(t, f, true, false)

	doRequest(router, http.MethodGet, "/auth/@me", "tok", "")
	require.Equal(t, 1, f.introspectCount())

	w := doRequest(router, http.MethodPost, "/auth/refresh", "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, f.introspectCount())
}

func TestInsufficientScopeResponse(t *testing.T) {
	f := newFakeAPI(t)
	f.scopes = []string{"identify"}
	router, _ := newTestRouter(t, f, true, false)

	w := doRequest(router, http.MethodGet, "/auth/@me", "tok", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "identify, guilds")
}

func TestUpstreamRejectionPropagates(t *testing.T) {
	f := newFakeAPI(t)
	f.introspectStatus = http.StatusUnauthorized
	f.introspectBody = `{"message":"401: Unauthorized","code":0}`
	router, _ := newTestRouter(t, f, true, false)

	w := doRequest(router, http.MethodGet, "/auth/@me", "tok", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":{"message":"401: Unauthorized","code":0}}`, w.Body.String())
}
