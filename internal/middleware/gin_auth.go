package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireUser adapts the net/http RequireUser middleware to Gin.
func GinRequireUser(auth *AuthMiddleware) gin.HandlerFunc {
	return ginBridge(auth.RequireUser)
}

// GinRequireToken adapts the net/http RequireToken middleware to Gin.
func GinRequireToken(auth *AuthMiddleware) gin.HandlerFunc {
	return ginBridge(auth.RequireToken)
}

func ginBridge(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// If the middleware already wrote the response, stop the Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
