package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
)

// requireAdmin gates an admin API handler and maps the gate's failure
// kinds onto status codes: no session is 401, wrong role is 403.
func (h *Handler) requireAdmin(c *gin.Context) (*auth.Identity, bool) {
	identity, err := h.gate.RequireAdmin(c.Request)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
		return nil, false
	}
	return identity, true
}

type clearLimitRequest struct {
	IP string `json:"ip"`
}

// ClearLimit resets the Oracle counter for one client IP. Manual
// unblocking for operators.
func (h *Handler) ClearLimit(c *gin.Context) {
	admin, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req clearLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IP == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.limiter.Clear(c.Request.Context(), oracleKeyPrefix+req.IP); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear limit"})
		return
	}

	log.Printf("[RATELIMIT_CLEAR] admin=%s ip=%s", admin.ID, req.IP)

	c.JSON(http.StatusOK, gin.H{"status": "cleared", "ip": req.IP})
}

// ClearAllLimits resets every counter in the Oracle namespace.
func (h *Handler) ClearAllLimits(c *gin.Context) {
	admin, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	if err := h.limiter.ClearPrefix(c.Request.Context(), oracleKeyPrefix); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear limits"})
		return
	}

	log.Printf("[RATELIMIT_CLEAR_ALL] admin=%s", admin.ID)

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
