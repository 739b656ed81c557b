package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CartStatus represents the status of a cart
type CartStatus string

const (
	CartOpen       CartStatus = "open"
	CartCheckedOut CartStatus = "checked_out"
	CartPaid       CartStatus = "paid"
	CartFailed     CartStatus = "failed"
)

// Cart represents a user's in-progress or finalized collection of offer selections
type Cart struct {
	ID         int64      `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Status     CartStatus `json:"status" db:"status"`
	TotalCents int64      `json:"total_cents" db:"total_cents"` // Derived: sum of line totals
	Lines      []CartLine `json:"lines"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// CartLine represents one offer entry within a cart.
// The unit price is snapshotted at add-time so later price changes on the
// offer do not retroactively alter an open cart.
type CartLine struct {
	CartID         int64     `json:"cart_id" db:"cart_id"`
	OfferID        int64     `json:"offer_id" db:"offer_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// LineTotalCents returns the line total: quantity times the price snapshot
func (l *CartLine) LineTotalCents() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

// Validate validates the cart line data
func (l *CartLine) Validate() error {
	if l.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	if l.UnitPriceCents < 0 {
		return errors.New("unit price cannot be negative")
	}

	return nil
}

// Validate validates the cart data
func (c *Cart) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("user id is required")
	}

	if err := validateCartStatus(c.Status); err != nil {
		return err
	}

	if c.TotalCents < 0 {
		return errors.New("total amount cannot be negative")
	}

	return nil
}

func validateCartStatus(status CartStatus) error {
	switch status {
	case CartOpen, CartCheckedOut, CartPaid, CartFailed:
		return nil
	default:
		return errors.New("invalid cart status")
	}
}

// ComputeTotalCents sums the line totals. Recomputing without mutation
// always yields the same value.
func (c *Cart) ComputeTotalCents() int64 {
	var total int64
	for i := range c.Lines {
		total += c.Lines[i].LineTotalCents()
	}
	return total
}

// FindLine returns the line for the given offer, or nil if absent
func (c *Cart) FindLine(offerID int64) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].OfferID == offerID {
			return &c.Lines[i]
		}
	}
	return nil
}

// UnitCount returns the total number of purchased units across all lines
func (c *Cart) UnitCount() int {
	count := 0
	for i := range c.Lines {
		count += c.Lines[i].Quantity
	}
	return count
}

// IsOpen returns true if the cart can still be mutated
func (c *Cart) IsOpen() bool {
	return c.Status == CartOpen
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// IsTerminal returns true if the cart has reached a final state
func (c *Cart) IsTerminal() bool {
	return c.Status == CartPaid || c.Status == CartFailed
}

// CanCheckout returns true if the cart can transition to checked out
func (c *Cart) CanCheckout() bool {
	return c.Status == CartOpen && !c.IsEmpty()
}

// TotalInCurrency returns the cart total in the main currency as a float
func (c *Cart) TotalInCurrency() float64 {
	return float64(c.TotalCents) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (c *Cart) GetStatusDisplayName() string {
	switch c.Status {
	case CartOpen:
		return "Open"
	case CartCheckedOut:
		return "Awaiting Payment"
	case CartPaid:
		return "Paid"
	case CartFailed:
		return "Payment Failed"
	default:
		return string(c.Status)
	}
}
