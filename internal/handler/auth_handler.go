package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/service"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

// AuthHandler exposes the token issuing endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs an AuthHandler instance.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// IssueToken godoc
// @Summary Issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.TokenRequest true "Sign-in payload"
// @Success 200 {object} models.TokenResponse
// @Router /jwt [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, token)
}
