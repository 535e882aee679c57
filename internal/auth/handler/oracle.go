package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/logger"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/ratelimit"
)

// Oracle chat throttling policy: 30 requests per rolling hour per
// client key.
const (
	oracleKeyPrefix = "oracle:"
	oracleLimit     = 30
	oracleWindow    = time.Hour
)

type oracleRequest struct {
	Message string `json:"message"`
}

// Oracle answers a chat message. The rate limit decision happens before
// any expensive upstream work.
func (h *Handler) Oracle(c *gin.Context) {
	var req oracleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	key := oracleKeyPrefix + ratelimit.ClientKey(c.Request)

	res := h.limiter.Check(c.Request.Context(), key, oracleLimit, oracleWindow)
	if !res.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "rate limit exceeded",
			"remaining": 0,
			"resetAt":   res.ResetAt,
		})
		return
	}

	reply, err := h.oracle.Reply(c.Request.Context(), req.Message)
	if err != nil {
		logger.Error("oracle upstream failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "oracle unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":     reply,
		"remaining": res.Remaining,
	})
}

// OracleLimit is a read-only diagnostic for the caller's own quota. It
// does not consume a unit.
func (h *Handler) OracleLimit(c *gin.Context) {
	key := oracleKeyPrefix + ratelimit.ClientKey(c.Request)

	res := h.limiter.Peek(c.Request.Context(), key, oracleLimit, oracleWindow)

	resetInMinutes := 0
	if !res.ResetAt.IsZero() {
		if until := time.Until(res.ResetAt); until > 0 {
			resetInMinutes = int(until.Minutes()) + 1
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":        res.Allowed,
		"remaining":      res.Remaining,
		"limit":          oracleLimit,
		"resetAt":        res.ResetAt,
		"resetInMinutes": resetInMinutes,
	})
}
