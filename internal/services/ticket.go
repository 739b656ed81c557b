package services

import (
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketRepository interface for ticket data operations
type TicketRepository interface {
	GetByID(id int64) (*models.Ticket, error)
	GetByFinalKey(finalKey string) (*models.Ticket, error)
	GetByUser(userID uuid.UUID, limit, offset int) ([]*models.Ticket, error)
	GetByPayment(paymentID int64) ([]*models.Ticket, error)
	MarkScanned(finalKey string) (*models.Ticket, error)
}

// UserReader is the read-only slice of the user repository the ticket
// service needs to resolve ticket holders.
type UserReader interface {
	GetByID(id uuid.UUID) (*models.User, error)
}

// TicketService issues verification keys and serves ticket lookup, holder
// verification and one-time scanning at the venue gate.
type TicketService struct {
	ticketRepo TicketRepository
	userRepo   UserReader
	salt       []byte
	logger     *zap.Logger
}

// NewTicketService creates a new ticket service. The salt is the
// server-side secret every verification key is derived from.
func NewTicketService(ticketRepo TicketRepository, userRepo UserReader, salt []byte, logger *zap.Logger) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		salt:       salt,
		logger:     logger,
	}
}

// KeyFunc returns the derivation used to mint final ticket keys
func (s *TicketService) KeyFunc() models.TicketKeyFunc {
	return func(ticketID int64, userID uuid.UUID, offerID int64, purchaseDate time.Time) string {
		return utils.DeriveTicketKey(s.salt, ticketID, userID, offerID, purchaseDate)
	}
}

// GetUserTickets lists a user's tickets, newest first
func (s *TicketService) GetUserTickets(userID uuid.UUID, limit, offset int) ([]*models.Ticket, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.ticketRepo.GetByUser(userID, limit, offset)
}

// GetTicketsByPayment lists the tickets minted for one payment
func (s *TicketService) GetTicketsByPayment(paymentID int64) ([]*models.Ticket, error) {
	return s.ticketRepo.GetByPayment(paymentID)
}

// VerifyTicket resolves a presented key to its ticket and holder. The key
// is re-derived from the stored ticket fields, so a forged or tampered key
// fails even if it collides with a stored row.
func (s *TicketService) VerifyTicket(finalKey string) (*models.TicketVerification, error) {
	ticket, err := s.ticketRepo.GetByFinalKey(finalKey)
	if err != nil {
		return nil, err
	}

	if !utils.VerifyTicketKey(s.salt, finalKey, ticket.ID, ticket.UserID, ticket.OfferID, ticket.PurchaseDate) {
		return nil, fmt.Errorf("key does not match ticket %d: %w", ticket.ID, models.ErrTicketNotFound)
	}

	user, err := s.userRepo.GetByID(ticket.UserID)
	if err != nil {
		return nil, err
	}

	return &models.TicketVerification{
		TicketID:          ticket.ID,
		FinalKey:          ticket.FinalKey,
		UserID:            user.ID,
		UserName:          user.FullName(),
		OfferDescriptions: []string{ticket.OfferDescription},
		PurchaseDate:      ticket.PurchaseDate,
	}, nil
}

// ScanTicket marks a ticket as used at the gate. A ticket can be scanned
// exactly once; a second attempt returns ErrTicketAlreadyScanned.
func (s *TicketService) ScanTicket(finalKey string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.MarkScanned(finalKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket scanned",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("user_id", ticket.UserID.String()))

	return ticket, nil
}
