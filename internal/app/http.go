package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth/handler"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/config"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/credentials"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/middleware"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/oracle"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/ratelimit"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	codec := token.NewCodec(cfg.AuthSecret)
	resolver := session.NewResolver(codec)
	gate := middleware.NewGate(resolver)

	credentialService := credentials.NewService(infra.DB)

	var store ratelimit.Store
	if infra.Redis != nil {
		store = ratelimit.NewRedisStore(infra.Redis.Client)
	} else {
		store = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(store)

	var oracleClient oracle.Client
	if cfg.OracleURL != "" {
		oracleClient = oracle.NewHTTPClient(cfg.OracleURL, cfg.OracleAPIKey)
	} else {
		oracleClient = oracle.Static{Text: "The Oracle is silent. Configure ORACLE_URL."}
	}

	h := handler.NewHandler(
		codec,
		resolver,
		gate,
		credentialService,
		limiter,
		oracleClient,
		cfg.Production(),
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// Everything under /admin needs an admin session; anonymous or
	// under-privileged hits are redirected to the login page with the
	// original target preserved.
	router.Use(middleware.GinGuard(gate, []middleware.GuardRule{
		{PathPrefix: "/admin", Role: auth.RoleAdmin},
	}))

	h.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		limiter.Close()
		return infra.DB.Close()
	}, nil
}
