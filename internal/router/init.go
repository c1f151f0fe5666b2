package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/config"
	"github.com/whispr-app/whispr/internal/application"
	"github.com/whispr-app/whispr/internal/domain/repository"
	handlers "github.com/whispr-app/whispr/internal/interface/http"
	"github.com/whispr-app/whispr/internal/router/modules"
	"github.com/whispr-app/whispr/pkg/helpers"
)

// Deps carries the explicitly constructed handles every module builds on.
// There is no global container; main constructs these and passes them down.
type Deps struct {
	Cfg      *config.Config
	Logger   *logrus.Logger
	Repo     repository.UserRepository
	Sessions *application.SessionManager
	RDB      *redis.Client
	OAuth    handlers.OAuthExchanger
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry, d Deps) {
	authSvc := application.NewAuthService(d.Repo, d.Logger)
	secretSvc := application.NewSecretService(d.Repo, d.Logger)
	cookies := helpers.NewCookie(d.Cfg.CookieDomain, d.Cfg.CookieSecure)

	authHandler := handlers.NewAuthHandler(authSvc, d.Sessions, d.OAuth, cookies, d.Logger)
	secretHandler := handlers.NewSecretHandler(secretSvc, d.Logger)

	r.Add(modules.NewAuthModule(authHandler, d.Sessions, d.RDB))
	r.Add(modules.NewSecretModule(secretHandler, d.Sessions, d.RDB))
}
