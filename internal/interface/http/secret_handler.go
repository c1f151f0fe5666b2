package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/internal/application"
	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/interface/middleware"
	"github.com/whispr-app/whispr/pkg/response"
	"github.com/whispr-app/whispr/pkg/validation"
)

type SecretHandler struct {
	Svc    *application.SecretService
	Logger *logrus.Logger
}

func NewSecretHandler(svc *application.SecretService, logger *logrus.Logger) *SecretHandler {
	return &SecretHandler{Svc: svc, Logger: logger}
}

type submitSecretRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// GetSecret GET /api/secret
func (h *SecretHandler) GetSecret(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	secret, err := h.Svc.GetSecret(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrNotAuthenticated) {
			response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
			return
		}
		h.Logger.WithError(err).Error("secret lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "secret lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"secret": secret}, "secret", nil)
}

// SubmitSecret POST /api/secret
func (h *SecretHandler) SubmitSecret(c *gin.Context) {
	var req submitSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.SubmitSecret(c.Request.Context(), uid, req.Text); err != nil {
		if errors.Is(err, application.ErrNotAuthenticated) {
			response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
			return
		}
		h.Logger.WithError(err).Error("secret update failed")
		response.Error[any](c, http.StatusInternalServerError, "secret update failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"submitted": true}, "secret stored", nil)
}

// ListSecrets GET /api/secrets, the anonymous feed of everyone's secrets.
func (h *SecretHandler) ListSecrets(c *gin.Context) {
	secrets, err := h.Svc.ListSecrets(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("secrets feed failed")
		response.Error[any](c, http.StatusInternalServerError, "secrets feed failed", nil)
		return
	}
	if secrets == nil {
		secrets = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"secrets": secrets}, "secrets", nil)
}

// GetProfile GET /api/profile
func (h *SecretHandler) GetProfile(c *gin.Context) {
	v, ok := c.Get(middleware.CtxUserKey)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	u := v.(*entity.User)
	response.Success(c, http.StatusOK, gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"providers":    u.Providers(),
		"has_password": u.HasLocalCredential(),
		"created_at":   u.CreatedAt,
	}, "profile", nil)
}
