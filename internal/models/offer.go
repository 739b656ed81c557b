package models

import (
	"errors"
	"strings"
	"time"
)

// OfferType represents the category of an offer
type OfferType string

const (
	OfferSolo   OfferType = "solo"
	OfferDuo    OfferType = "duo"
	OfferFamily OfferType = "family"
)

// Capacity returns the number of admission units one purchased unit of
// this offer type grants.
func (t OfferType) Capacity() int {
	switch t {
	case OfferDuo:
		return 2
	case OfferFamily:
		return 4
	default:
		return 1
	}
}

// OfferStatus represents the availability status of an offer
type OfferStatus string

const (
	OfferAvailable OfferStatus = "available"
	OfferSoldOut   OfferStatus = "sold_out"
	OfferExpired   OfferStatus = "expired"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// Offer represents a purchasable allotment of admission units for a discipline
type Offer struct {
	ID          int64       `json:"id" db:"id"`
	Type        OfferType   `json:"type" db:"type"`
	Discipline  string      `json:"discipline" db:"discipline"`
	Description string      `json:"description" db:"description"`
	Quantity    int         `json:"quantity" db:"quantity"`     // Remaining stock, never negative
	PriceCents  int64       `json:"price_cents" db:"price_cents"` // Unit price in cents
	ExpiresAt   *time.Time  `json:"expires_at" db:"expires_at"`
	Status      OfferStatus `json:"status" db:"status"`
	Featured    bool        `json:"featured" db:"featured"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// OfferCreateRequest represents the data needed to create a new offer
type OfferCreateRequest struct {
	Type        OfferType  `json:"type"`
	Discipline  string     `json:"discipline"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	PriceCents  int64      `json:"price_cents"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Featured    bool       `json:"featured"`
}

// OfferUpdateRequest represents the data that can be updated for an offer
type OfferUpdateRequest struct {
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	PriceCents  int64      `json:"price_cents"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Featured    bool       `json:"featured"`
}

// Validate validates the offer data
func (o *Offer) Validate() error {
	if err := validateOfferType(o.Type); err != nil {
		return err
	}

	if err := validateOfferDiscipline(o.Discipline); err != nil {
		return err
	}

	if err := validateOfferQuantity(o.Quantity); err != nil {
		return err
	}

	if err := validateOfferPrice(o.PriceCents); err != nil {
		return err
	}

	return validateOfferStatus(o.Status)
}

// Validate validates offer creation data
func (req *OfferCreateRequest) Validate() error {
	if err := validateOfferType(req.Type); err != nil {
		return err
	}

	if err := validateOfferDiscipline(req.Discipline); err != nil {
		return err
	}

	if err := validateOfferQuantity(req.Quantity); err != nil {
		return err
	}

	return validateOfferPrice(req.PriceCents)
}

// Validate validates offer update data
func (req *OfferUpdateRequest) Validate() error {
	if err := validateOfferQuantity(req.Quantity); err != nil {
		return err
	}

	return validateOfferPrice(req.PriceCents)
}

func validateOfferType(t OfferType) error {
	switch t {
	case OfferSolo, OfferDuo, OfferFamily:
		return nil
	default:
		return errors.New("invalid offer type")
	}
}

func validateOfferStatus(status OfferStatus) error {
	switch status {
	case OfferAvailable, OfferSoldOut, OfferExpired, OfferWithdrawn:
		return nil
	default:
		return errors.New("invalid offer status")
	}
}

func validateOfferDiscipline(discipline string) error {
	if strings.TrimSpace(discipline) == "" {
		return errors.New("discipline is required")
	}

	if len(discipline) > 255 {
		return errors.New("discipline must be less than 255 characters")
	}

	return nil
}

func validateOfferQuantity(quantity int) error {
	if quantity < 0 {
		return errors.New("quantity cannot be negative")
	}

	return nil
}

func validateOfferPrice(priceCents int64) error {
	if priceCents < 0 {
		return errors.New("price cannot be negative")
	}

	// Maximum unit price of $100,000 (10,000,000 cents)
	if priceCents > 10000000 {
		return errors.New("price cannot exceed $100,000")
	}

	return nil
}

// IsExpired returns true if the offer has an expiration in the past
func (o *Offer) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && !o.ExpiresAt.After(now)
}

// IsPurchasable returns true if the offer can currently be added to a cart
func (o *Offer) IsPurchasable(now time.Time) bool {
	return o.Status == OfferAvailable && o.Quantity > 0 && !o.IsExpired(now)
}

// PriceInCurrency returns the unit price in the main currency as a float
func (o *Offer) PriceInCurrency() float64 {
	return float64(o.PriceCents) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (o *Offer) GetStatusDisplayName() string {
	switch o.Status {
	case OfferAvailable:
		return "Available"
	case OfferSoldOut:
		return "Sold Out"
	case OfferExpired:
		return "Expired"
	case OfferWithdrawn:
		return "Withdrawn"
	default:
		return string(o.Status)
	}
}
