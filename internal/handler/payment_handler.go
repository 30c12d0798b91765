package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/middleware"
	"github.com/scuola-app/scuola-api/internal/service"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

// PaymentHandler exposes the payment intent, settlement, history and receipt
// endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
	logger   *zap.Logger
}

// NewPaymentHandler constructs a PaymentHandler instance.
func NewPaymentHandler(payments *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{payments: payments, logger: logger}
}

// CreateIntent godoc
// @Summary Create a payment intent
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body service.CreateIntentRequest true "Intent payload"
// @Success 200 {object} service.IntentResponse
// @Security BearerAuth
// @Router /create_payment_intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req service.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	intent, err := h.payments.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intent)
}

// Settle godoc
// @Summary Record a completed payment and settle the cart
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body service.PaymentRequest true "Payment payload"
// @Success 201 {object} models.SettlementResult
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Settle(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	claims, _ := middleware.ClaimsFromContext(c)
	result, err := h.payments.Settle(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// History lists the courses the caller has paid for.
func (h *PaymentHandler) History(c *gin.Context) {
	courses, err := h.payments.History(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Receipt streams the PDF receipt for one payment.
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id := c.Param("id")
	claims, _ := middleware.ClaimsFromContext(c)

	pdf, err := h.payments.Receipt(c.Request.Context(), id, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
