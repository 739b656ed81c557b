package handlers

import (
	"net/http"

	"games-ticketing-platform/internal/middleware"
	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartHandler serves the authenticated user's cart
type CartHandler struct {
	carts  services.CartProvider
	logger *zap.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts services.CartProvider, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func authedUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return userID, ok
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddLine handles POST /cart/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	var req models.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := h.carts.AddLine(userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// UpdateLine handles PUT /cart/lines/:offerID
func (h *CartHandler) UpdateLine(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	offerID, ok := parseIDParam(c, "offerID")
	if !ok {
		return
	}

	var body struct {
		NewQuantity int `json:"new_quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := h.carts.UpdateLine(userID, &models.UpdateLineRequest{
		OfferID:     offerID,
		NewQuantity: body.NewQuantity,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveLine handles DELETE /cart/lines/:offerID
func (h *CartHandler) RemoveLine(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	offerID, ok := parseIDParam(c, "offerID")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveLine(userID, offerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	cart, err := h.carts.ClearCart(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// Checkout handles POST /cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	cart, err := h.carts.Checkout(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}
