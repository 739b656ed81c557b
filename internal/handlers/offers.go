package handlers

import (
	"net/http"
	"strconv"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"
	"games-ticketing-platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OfferHandler serves the public catalog and the offer admin operations
type OfferHandler struct {
	offers services.OfferProvider
	logger *zap.Logger
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offers services.OfferProvider, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// ListOffers handles GET /offers
func (h *OfferHandler) ListOffers(c *gin.Context) {
	filters := repositories.OfferSearchFilters{
		Discipline: c.Query("discipline"),
		Type:       models.OfferType(c.Query("type")),
		Status:     models.OfferStatus(c.Query("status")),
		Limit:      parseIntQuery(c, "limit", 20),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if v, ok := c.GetQuery("featured"); ok {
		featured := v == "true"
		filters.Featured = &featured
	}

	offers, total, err := h.offers.SearchOffers(filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": offers,
		"total":  total,
	})
}

// GetOffer handles GET /offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	offer, err := h.offers.GetOffer(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// CreateOffer handles POST /admin/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req models.OfferCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	offer, err := h.offers.CreateOffer(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// UpdateOffer handles PUT /admin/offers/:id
func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.OfferUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	offer, err := h.offers.UpdateOffer(id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// WithdrawOffer handles DELETE /admin/offers/:id
func (h *OfferHandler) WithdrawOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.offers.WithdrawOffer(id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "offer withdrawn"})
}

// ExpireOffers handles POST /admin/offers/expire
func (h *OfferHandler) ExpireOffers(c *gin.Context) {
	expired, err := h.offers.ExpireDueOffers()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

// GetSales handles GET /admin/offers/sales
func (h *OfferHandler) GetSales(c *gin.Context) {
	sales, err := h.offers.GetSales()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
