package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/credentials"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/middleware"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/oracle"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/ratelimit"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/token"
)

type Handler struct {
	codec             *token.Codec
	resolver          *session.Resolver
	gate              *middleware.Gate
	credentialService *credentials.Service
	limiter           *ratelimit.Limiter
	oracle            oracle.Client

	// secureCookies is false only in development over plain HTTP.
	secureCookies bool
}

func NewHandler(
	codec *token.Codec,
	resolver *session.Resolver,
	gate *middleware.Gate,
	credentialService *credentials.Service,
	limiter *ratelimit.Limiter,
	oracleClient oracle.Client,
	secureCookies bool,
) *Handler {
	return &Handler{
		codec:             codec,
		resolver:          resolver,
		gate:              gate,
		credentialService: credentialService,
		limiter:           limiter,
		oracle:            oracleClient,
		secureCookies:     secureCookies,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/register", h.Register)

	r.GET("/api/me", h.Me)

	r.POST("/api/oracle", h.Oracle)
	r.GET("/api/oracle/limit", h.OracleLimit)

	r.POST("/admin/api/ratelimit/clear", h.ClearLimit)
	r.POST("/admin/api/ratelimit/clear-all", h.ClearAllLimits)

	for _, route := range r.Routes() {
		log.Printf("[ROUTE] %s %s", route.Method, route.Path)
	}
}

func (h *Handler) cookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Secure: h.secureCookies,
	}
}
