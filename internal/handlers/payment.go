package handlers

import (
	"net/http"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves payment submission and lookup
type PaymentHandler struct {
	payments services.PaymentProvider
	checkout services.CheckoutProvider
	logger   *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments services.PaymentProvider, checkout services.CheckoutProvider, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, checkout: checkout, logger: logger}
}

// SubmitPayment handles POST /payments
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	var req models.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.payments.SubmitPayment(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

// CompleteCheckout handles POST /checkout, freezing the open cart and
// paying for it in one call.
func (h *PaymentHandler) CompleteCheckout(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	var body struct {
		Method models.PaymentMethod `json:"method"`
		Token  string               `json:"token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.checkout.CompleteCheckout(c.Request.Context(), userID, body.Method, body.Token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetTransaction handles GET /payments/:id/transaction
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.payments.GetTransaction(id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
