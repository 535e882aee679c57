package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the resolved identity or null. It never errors: an absent
// or invalid session is simply an anonymous caller.
func (h *Handler) Me(c *gin.Context) {
	identity := h.resolver.CurrentUser(c.Request)
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":    identity.ID,
		"email": identity.Email,
		"name":  identity.Name,
		"role":  identity.Role,
	}})
}
