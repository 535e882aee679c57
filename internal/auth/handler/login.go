package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/credentials"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	identity, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		// Same response for unknown user and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	credential, err := h.codec.Issue(*identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	session.SetCookie(c.Writer, credential, h.cookieOptions())

	log.Printf("[LOGIN_SUCCESS] user_id=%s ip=%s", identity.ID, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}

func (h *Handler) Logout(c *gin.Context) {

	// Clearing the cookie is the whole logout: credentials are
	// stateless and stay valid until natural expiry.
	session.ClearCookie(c.Writer, h.cookieOptions())

	// Idempotent response
	c.Status(http.StatusNoContent)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.credentialService.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		switch err {
		case credentials.ErrAlreadyRegistered:
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	// Fresh accounts log in explicitly; registration never sets a cookie.
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
