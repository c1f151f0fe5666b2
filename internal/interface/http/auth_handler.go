package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/internal/application"
	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/domain/repository"
	"github.com/whispr-app/whispr/internal/interface/middleware"
	"github.com/whispr-app/whispr/pkg/helpers"
	"github.com/whispr-app/whispr/pkg/response"
	"github.com/whispr-app/whispr/pkg/validation"
)

// OAuthExchanger is the slice of the provider glue the handler needs;
// helpers.OAuth implements it, tests fake it.
type OAuthExchanger interface {
	AuthCodeURL(provider, state string) (string, error)
	FetchProfile(ctx context.Context, provider, code string) (helpers.Profile, error)
}

type AuthHandler struct {
	Auth     *application.AuthService
	Sessions *application.SessionManager
	OAuth    OAuthExchanger
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, sessions *application.SessionManager, oauth OAuthExchanger, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, OAuth: oauth, Cookies: cookies, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrDuplicateAccount) {
			response.Error[any](c, http.StatusConflict, "account already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	h.startSession(c, u, http.StatusCreated, "registered")
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	h.startSession(c, u, http.StatusOK, "login successful")
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Sessions.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, application.ErrNotAuthenticated) {
			response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		h.Logger.WithError(err).Error("refresh failed")
		response.Error[any](c, http.StatusInternalServerError, "refresh failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", nil)
}

// Logout POST /api/logout (auth required). Revokes the session server-side
// so a replayed token is rejected, then clears the cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Sessions.Revoke(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("session revoke failed")
		response.Error[any](c, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// OAuthRedirect GET /api/auth/:provider
func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	provider := c.Param("provider")
	state, err := genState(32)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "state generation failed", nil)
		return
	}
	url, err := h.OAuth.AuthCodeURL(provider, state)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "unknown provider", nil)
		return
	}
	h.Cookies.SetState(c, state, 10*time.Minute)
	c.Redirect(http.StatusFound, url)
}

// OAuthCallback GET /api/auth/:provider/callback
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider, err := parseProvider(c.Param("provider"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "unknown provider", nil)
		return
	}

	state := c.Query("state")
	want, err := c.Cookie("oauth_state")
	h.Cookies.ClearState(c)
	if err != nil || state == "" || state != want {
		response.Error[any](c, http.StatusUnauthorized, "state mismatch", nil)
		return
	}

	profile, err := h.OAuth.FetchProfile(c.Request.Context(), string(provider), c.Query("code"))
	if err != nil {
		h.Logger.WithError(err).WithField("provider", provider).Error("profile fetch failed")
		response.Error[any](c, http.StatusInternalServerError, "federated login failed", nil)
		return
	}

	u, err := h.Auth.FederatedLogin(c.Request.Context(), provider, profile.ID, profile.Email)
	if err != nil {
		h.Logger.WithError(err).WithField("provider", provider).Error("federated login failed")
		response.Error[any](c, http.StatusInternalServerError, "federated login failed", nil)
		return
	}

	h.startSession(c, u, http.StatusOK, "login successful")
}

func (h *AuthHandler) startSession(c *gin.Context, u *entity.User, status int, msg string) {
	pair, err := h.Sessions.Issue(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session issue failed")
		response.Error[any](c, http.StatusInternalServerError, "session issue failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, status, gin.H{"user_id": u.ID, "email": u.Email}, msg, nil)
}

func parseProvider(s string) (repository.Provider, error) {
	switch s {
	case "google":
		return repository.ProviderGoogle, nil
	case "facebook":
		return repository.ProviderFacebook, nil
	default:
		return "", errors.New("unknown provider: " + s)
	}
}

func genState(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
