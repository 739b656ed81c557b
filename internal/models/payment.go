package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how a payment is made
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodPaypal       PaymentMethod = "paypal"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// TransactionStatus is the gateway-level outcome, finer-grained than the
// payment status.
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionAuthorized TransactionStatus = "authorized"
	TransactionDeclined   TransactionStatus = "declined"
	TransactionError      TransactionStatus = "error"
)

// Payment represents one checkout attempt's monetary capture record.
// A cart spawns at most one payment.
type Payment struct {
	ID          int64         `json:"id" db:"id"`
	CartID      int64         `json:"cart_id" db:"cart_id"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id"`
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Method      PaymentMethod `json:"method" db:"method"`
	Status      PaymentStatus `json:"status" db:"status"`
	Reference   string        `json:"reference" db:"reference"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Transaction is the gateway-level outcome record backing a payment
type Transaction struct {
	ID          int64             `json:"id" db:"id"`
	PaymentID   int64             `json:"payment_id" db:"payment_id"`
	AmountCents int64             `json:"amount_cents" db:"amount_cents"`
	Status      TransactionStatus `json:"status" db:"status"`
	ValidatedAt *time.Time        `json:"validated_at" db:"validated_at"`
	Details     string            `json:"details" db:"details"`
	IsTest      bool              `json:"is_test" db:"is_test"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// Validate validates the payment data
func (p *Payment) Validate() error {
	if p.CartID <= 0 {
		return errors.New("cart id is required")
	}

	if p.UserID == uuid.Nil {
		return errors.New("user id is required")
	}

	if p.AmountCents < 0 {
		return errors.New("amount cannot be negative")
	}

	if err := ValidatePaymentMethod(p.Method); err != nil {
		return err
	}

	return validatePaymentStatus(p.Status)
}

// ValidatePaymentMethod validates a payment method
func ValidatePaymentMethod(method PaymentMethod) error {
	switch method {
	case MethodCard, MethodPaypal, MethodBankTransfer:
		return nil
	default:
		return errors.New("invalid payment method")
	}
}

func validatePaymentStatus(status PaymentStatus) error {
	switch status {
	case PaymentPending, PaymentSucceeded, PaymentFailed:
		return nil
	default:
		return errors.New("invalid payment status")
	}
}

// Validate validates the transaction data
func (t *Transaction) Validate() error {
	if t.PaymentID <= 0 {
		return errors.New("payment id is required")
	}

	if t.AmountCents < 0 {
		return errors.New("amount cannot be negative")
	}

	switch t.Status {
	case TransactionPending, TransactionAuthorized, TransactionDeclined, TransactionError:
		return nil
	default:
		return errors.New("invalid transaction status")
	}
}

// IsPending returns true if the payment has not resolved yet
func (p *Payment) IsPending() bool {
	return p.Status == PaymentPending
}

// IsFinal returns true if the payment has reached a terminal status
func (p *Payment) IsFinal() bool {
	return p.Status == PaymentSucceeded || p.Status == PaymentFailed
}

// AmountInCurrency returns the amount in the main currency as a float
func (p *Payment) AmountInCurrency() float64 {
	return float64(p.AmountCents) / 100.0
}

// Succeeded returns true if the gateway authorized the transaction
func (t *Transaction) Succeeded() bool {
	return t.Status == TransactionAuthorized
}
