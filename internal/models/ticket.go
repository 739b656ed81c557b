package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TicketKeyFunc derives the final verification key for a ticket once its
// id has been assigned.
type TicketKeyFunc func(ticketID int64, userID uuid.UUID, offerID int64, purchaseDate time.Time) string

// Ticket represents one verifiable admission unit minted after successful
// payment. A ticket is immutable once minted, except for the one-time scan
// mark, and outlives the cart it was purchased from.
type Ticket struct {
	ID               int64      `json:"id" db:"id"`
	FinalKey         string     `json:"final_key" db:"final_key"` // Unique, derived server-side
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	PaymentID        int64      `json:"payment_id" db:"payment_id"`
	OfferID          int64      `json:"offer_id" db:"offer_id"`
	OfferDescription string     `json:"offer_description" db:"offer_description"`
	PurchaseDate     time.Time  `json:"purchase_date" db:"purchase_date"`
	Scanned          bool       `json:"scanned" db:"scanned"`
	ScannedAt        *time.Time `json:"scanned_at" db:"scanned_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// TicketVerification is the receipt-facing view of a minted ticket
type TicketVerification struct {
	TicketID          int64     `json:"ticket_id"`
	FinalKey          string    `json:"final_key"`
	UserID            uuid.UUID `json:"user_id"`
	UserName          string    `json:"user_name"`
	OfferDescriptions []string  `json:"offer_descriptions"`
	PurchaseDate      time.Time `json:"purchase_date"`
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.FinalKey == "" {
		return errors.New("final key is required")
	}

	if t.UserID == uuid.Nil {
		return errors.New("user id is required")
	}

	if t.OfferID <= 0 {
		return errors.New("offer id is required")
	}

	if t.PurchaseDate.IsZero() {
		return errors.New("purchase date is required")
	}

	return nil
}

// CanBeScanned returns true if the ticket has not been scanned yet
func (t *Ticket) CanBeScanned() bool {
	return !t.Scanned
}
