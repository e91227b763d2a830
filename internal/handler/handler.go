package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/williamhatcher/harmonyAuth/internal/auth"
	"github.com/williamhatcher/harmonyAuth/internal/logger"
	"github.com/williamhatcher/harmonyAuth/internal/middleware"
)

// Handler exposes the token-resolution pipeline over HTTP.
type Handler struct {
	resolver *auth.Resolver
}

func NewHandler(resolver *auth.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// RegisterRoutes mounts the auth routes. Routes that only need the
// raw credential use RequireToken; @me needs the resolved identity.
func (h *Handler) RegisterRoutes(r *gin.Engine, authMW *middleware.AuthMiddleware) {
	grp := r.Group("/auth")

	grp.GET("/@me", middleware.GinRequireUser(authMW), h.currentUser)
	grp.POST("/refresh", middleware.GinRequireToken(authMW), h.refresh)
	grp.POST("/logout", middleware.GinRequireToken(authMW), h.logout)
}

// currentUser returns the resolved identity attached by the middleware.
func (h *Handler) currentUser(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, id)
}

// refresh re-runs the full resolution path, bypassing and overwriting
// the cache entry for the presented token.
func (h *Handler) refresh(c *gin.Context) {
	token, ok := middleware.TokenFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	id, err := h.resolver.Resolve(c.Request.Context(), token, true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, id)
}

// logout revokes the presented token: the cache entry is deleted and,
// when application credentials are configured, Discord is told to
// invalidate the token.
func (h *Handler) logout(c *gin.Context) {
	token, ok := middleware.TokenFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	if err := h.resolver.Revoke(c.Request.Context(), token); err != nil {
		logger.Error("revocation failed", map[string]any{
			"error": err.Error(),
		})
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	status, body := auth.HTTPStatus(err)
	c.JSON(status, body)
}
