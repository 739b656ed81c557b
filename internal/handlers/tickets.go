package handlers

import (
	"net/http"

	"games-ticketing-platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TicketHandler serves ticket lookup for buyers and verification and
// scanning for gate staff.
type TicketHandler struct {
	tickets services.TicketProvider
	logger  *zap.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets services.TicketProvider, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// ListMyTickets handles GET /tickets
func (h *TicketHandler) ListMyTickets(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}

	tickets, err := h.tickets.GetUserTickets(userID,
		parseIntQuery(c, "limit", 20),
		parseIntQuery(c, "offset", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// VerifyTicket handles GET /tickets/verify/:key
func (h *TicketHandler) VerifyTicket(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ticket key"})
		return
	}

	verification, err := h.tickets.VerifyTicket(key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// ScanTicket handles POST /tickets/:key/scan
func (h *TicketHandler) ScanTicket(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ticket key"})
		return
	}

	ticket, err := h.tickets.ScanTicket(key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}
