package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/service"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

// CartHandler exposes the selected-classes endpoints.
type CartHandler struct {
	cart   *service.CartService
	logger *zap.Logger
}

// NewCartHandler constructs a CartHandler instance.
func NewCartHandler(cart *service.CartService, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{cart: cart, logger: logger}
}

// Add godoc
// @Summary Add a course to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param payload body service.SelectClassRequest true "Selection payload"
// @Success 201 {object} models.CartItem
// @Router /selectedClasses [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req service.SelectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	item, err := h.cart.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List the caller's pending selections
// @Tags cart
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {array} models.CartItem
// @Security BearerAuth
// @Router /selectedClasses [get]
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.cart.ListForStudent(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Remove deletes one selection.
func (h *CartHandler) Remove(c *gin.Context) {
	if err := h.cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true})
}
