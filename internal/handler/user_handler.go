package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/middleware"
	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/service"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

// UserHandler exposes registration, the admin user dashboard and the public
// instructor listings.
type UserHandler struct {
	users        *service.UserService
	logger       *zap.Logger
	popularLimit int
}

// NewUserHandler constructs a UserHandler instance.
func NewUserHandler(users *service.UserService, logger *zap.Logger, popularLimit int) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if popularLimit <= 0 {
		popularLimit = 6
	}
	return &UserHandler{users: users, logger: logger, popularLimit: popularLimit}
}

// Register godoc
// @Summary Store a user on first sign-in
// @Tags users
// @Accept json
// @Produce json
// @Param payload body service.RegisterUserRequest true "User payload"
// @Success 201 {object} service.RegisterResult
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !result.Created {
		response.JSON(c, http.StatusOK, result)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List every user
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users/admin [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// CheckAdmin answers the admin self-check. Asking about someone else's email
// is not an error; the answer is simply negative.
func (h *UserHandler) CheckAdmin(c *gin.Context) {
	email := c.Param("email")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Email != email {
		response.JSON(c, http.StatusOK, models.AdminCheck{Admin: false})
		return
	}

	admin, err := h.users.IsAdmin(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.AdminCheck{Admin: admin})
}

// PromoteToAdmin godoc
// @Summary Grant the admin role
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /users/admin/{id} [patch]
func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	if err := h.users.PromoteToAdmin(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// PromoteToInstructor grants the teacher role to a user.
func (h *UserHandler) PromoteToInstructor(c *gin.Context) {
	if err := h.users.PromoteToInstructor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modified": true})
}

// Delete removes a user record.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Instructors godoc
// @Summary List all instructors
// @Tags instructors
// @Produce json
// @Success 200 {array} models.User
// @Router /instructors [get]
func (h *UserHandler) Instructors(c *gin.Context) {
	instructors, err := h.users.Instructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors)
}

// PopularInstructors ranks instructors by total enrollment.
func (h *UserHandler) PopularInstructors(c *gin.Context) {
	rankings, err := h.users.PopularInstructors(c.Request.Context(), h.popularLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rankings)
}
