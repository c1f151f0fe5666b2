package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/whispr-app/whispr/internal/application"
	handlers "github.com/whispr-app/whispr/internal/interface/http"
	"github.com/whispr-app/whispr/internal/interface/middleware"
)

// AuthModule wires the authentication entry points.
// Public: POST /api/register, POST /api/login, POST /api/refresh,
// GET /api/auth/:provider, GET /api/auth/:provider/callback
// Protected: POST /api/logout
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *application.SessionManager
	RDB      *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, sessions *application.SessionManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	credLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath()) // 10 req/min per IP per route
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP())

	rg.POST("/register", credLimiter, m.Handler.Register)
	rg.POST("/login", credLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	rg.GET("/auth/:provider", credLimiter, m.Handler.OAuthRedirect)
	rg.GET("/auth/:provider/callback", credLimiter, m.Handler.OAuthCallback)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	{
		auth.POST("/logout", m.Handler.Logout)
	}
}
