package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/whispr-app/whispr/internal/application"
	handlers "github.com/whispr-app/whispr/internal/interface/http"
	"github.com/whispr-app/whispr/internal/interface/middleware"
)

// SecretModule wires the authenticated secret routes.
// Protected: GET /api/secret, POST /api/secret, GET /api/secrets, GET /api/profile
type SecretModule struct {
	Handler  *handlers.SecretHandler
	Sessions *application.SessionManager
	RDB      *redis.Client
}

func NewSecretModule(h *handlers.SecretHandler, sessions *application.SessionManager, rdb *redis.Client) *SecretModule {
	return &SecretModule{Handler: h, Sessions: sessions, RDB: rdb}
}

func (m *SecretModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/secret", m.Handler.GetSecret)
		auth.POST("/secret", m.Handler.SubmitSecret)
		auth.GET("/secrets", m.Handler.ListSecrets)
		auth.GET("/profile", m.Handler.GetProfile)
	}
}
