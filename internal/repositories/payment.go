package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
)

// PaymentRepository handles payment and transaction data operations
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, cart_id, user_id, amount_cents, method, status, reference, created_at, updated_at"

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.CartID,
		&payment.UserID,
		&payment.AmountCents,
		&payment.Method,
		&payment.Status,
		&payment.Reference,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatePending creates the pending payment record for a checkout attempt.
// The unique constraint on cart_id enforces at most one payment per cart;
// a second attempt maps to ErrCartAlreadyFinalized.
func (r *PaymentRepository) CreatePending(cartID int64, userID uuid.UUID, amountCents int64, method models.PaymentMethod, reference string) (*models.Payment, error) {
	if err := models.ValidatePaymentMethod(method); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO payments (cart_id, user_id, amount_cents, method, status, reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + paymentColumns

	now := time.Now()
	payment, err := scanPayment(r.db.QueryRow(
		query,
		cartID,
		userID,
		amountCents,
		method,
		models.PaymentPending,
		reference,
		now,
		now,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("payment already exists for cart %d: %w", cartID, models.ErrCartAlreadyFinalized)
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(id int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %d: %w", id, models.ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetByCart retrieves the payment attached to a cart, scoped to its owner
func (r *PaymentRepository) GetByCart(cartID int64, userID uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE cart_id = $1 AND user_id = $2`

	payment, err := scanPayment(r.db.QueryRow(query, cartID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no payment for cart %d: %w", cartID, models.ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("failed to get payment by cart: %w", err)
	}

	return payment, nil
}

// GetTransaction retrieves the gateway transaction backing a payment
func (r *PaymentRepository) GetTransaction(paymentID int64) (*models.Transaction, error) {
	query := `
		SELECT id, payment_id, amount_cents, status, validated_at, details, is_test, created_at
		FROM transactions
		WHERE payment_id = $1`

	txn := &models.Transaction{}
	err := r.db.QueryRow(query, paymentID).Scan(
		&txn.ID,
		&txn.PaymentID,
		&txn.AmountCents,
		&txn.Status,
		&txn.ValidatedAt,
		&txn.Details,
		&txn.IsTest,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no transaction for payment %d: %w", paymentID, models.ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// isUniqueViolation reports whether an error came from a unique constraint,
// for both the pgx and sqlite3 drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
