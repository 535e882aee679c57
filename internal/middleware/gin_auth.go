package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGuard adapts the net/http guard middleware to gin. Auth decisions
// stay in the Gate; gin only hosts the chain.
func GinGuard(gate *Gate, rules []GuardRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := gate.Guard(rules)(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the guard already wrote the redirect, stop the gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
