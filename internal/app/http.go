package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/williamhatcher/harmonyAuth/internal/auth"
	"github.com/williamhatcher/harmonyAuth/internal/cache"
	"github.com/williamhatcher/harmonyAuth/internal/config"
	"github.com/williamhatcher/harmonyAuth/internal/handler"
	"github.com/williamhatcher/harmonyAuth/internal/middleware"
)

func setupHTTP(cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tokenCache := cache.NewRedisStore(infra.Redis.Client)

	extractor, err := auth.NewExtractor(cfg.UseHeader, cfg.UseCookie, cfg.CookieName)
	if err != nil {
		return nil, nil, err
	}

	resolver := auth.NewResolver(tokenCache, infra.Discord, auth.ResolverOptions{
		RequiredScopes: cfg.RequiredScopes,
		RetrieveGuilds: cfg.RetrieveGuilds,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		VerifyClientID: cfg.VerifyClientID,
	})

	authMiddleware := middleware.NewAuthMiddleware(extractor, resolver)
	authHandler := handler.NewHandler(resolver)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router, authMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
