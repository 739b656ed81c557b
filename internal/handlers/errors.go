package handlers

import (
	"errors"
	"net/http"

	"games-ticketing-platform/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates the service error taxonomy to an HTTP status at
// the boundary. Services never see HTTP; handlers never invent errors.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "validation failed",
			"violations": validationErr.Violations,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrOfferNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrCartNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrOfferUnavailable),
		errors.Is(err, models.ErrCartNotOpen),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrCartNotReadyForPayment),
		errors.Is(err, models.ErrCartAlreadyFinalized),
		errors.Is(err, models.ErrTicketAlreadyScanned):
		status = http.StatusConflict
	case errors.Is(err, models.ErrPaymentGatewayError):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
