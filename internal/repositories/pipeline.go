package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
)

// PipelineRepository owns the transactional boundary of the checkout
// pipeline: payment resolution, cart state transition, ticket minting and
// stock rollback commit together or not at all. No partial outcome is
// observable to other readers.
type PipelineRepository struct {
	db *sql.DB
}

// NewPipelineRepository creates a new pipeline repository
func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

// FinalizeSuccess commits the success branch for a checked-out cart: the
// cart becomes paid, the payment succeeded, the gateway transaction is
// recorded and one ticket per purchased unit is minted. Ticket keys are
// derived after id assignment via keyFn. Everything runs in one database
// transaction; a cart that is no longer checked out aborts with
// ErrCartAlreadyFinalized.
func (r *PipelineRepository) FinalizeSuccess(cart *models.Cart, paymentID int64, details string, isTest bool, purchaseDate time.Time, keyFn models.TicketKeyFunc) ([]*models.Ticket, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if err := transitionCartTx(tx, cart.ID, models.CartCheckedOut, models.CartPaid, now); err != nil {
		return nil, err
	}

	if err := resolvePaymentTx(tx, paymentID, models.PaymentSucceeded, now); err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (payment_id, amount_cents, status, validated_at, details, is_test, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		paymentID, cart.TotalCents, models.TransactionAuthorized, now, details, isTest, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	tickets, err := mintTicketsTx(tx, cart, paymentID, purchaseDate, keyFn)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrTicketIssuanceFailure)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout success: %w", err)
	}

	return tickets, nil
}

// FinalizeFailure commits the failure branch: the cart becomes failed, the
// payment failed, the gateway transaction is recorded for diagnostics and
// every reserved unit is released back to its offer. The released stock is
// indistinguishable from "never reserved" to outside observers.
func (r *PipelineRepository) FinalizeFailure(cart *models.Cart, paymentID int64, txnStatus models.TransactionStatus, details string, isTest bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if err := transitionCartTx(tx, cart.ID, models.CartCheckedOut, models.CartFailed, now); err != nil {
		return err
	}

	if err := resolvePaymentTx(tx, paymentID, models.PaymentFailed, now); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (payment_id, amount_cents, status, validated_at, details, is_test, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5, $6)`,
		paymentID, cart.TotalCents, txnStatus, details, isTest, now)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	for i := range cart.Lines {
		line := &cart.Lines[i]
		_, err = tx.Exec(`
			UPDATE offers
			SET quantity = quantity + $1,
			    status = CASE WHEN status = 'sold_out' AND (expires_at IS NULL OR expires_at > $2) THEN 'available' ELSE status END,
			    updated_at = $3
			WHERE id = $4`,
			line.Quantity, now, now, line.OfferID)
		if err != nil {
			return fmt.Errorf("failed to release stock for offer %d: %w", line.OfferID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkout failure: %w", err)
	}

	return nil
}

func transitionCartTx(tx *sql.Tx, cartID int64, from, to models.CartStatus, now time.Time) error {
	result, err := tx.Exec(
		"UPDATE carts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, now, cartID, from)
	if err != nil {
		return fmt.Errorf("failed to transition cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cart %d is not awaiting payment: %w", cartID, models.ErrCartAlreadyFinalized)
	}

	return nil
}

func resolvePaymentTx(tx *sql.Tx, paymentID int64, to models.PaymentStatus, now time.Time) error {
	result, err := tx.Exec(
		"UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, now, paymentID, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to resolve payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("payment %d is not pending: %w", paymentID, models.ErrCartAlreadyFinalized)
	}

	return nil
}

// mintTicketsTx inserts one ticket per purchased unit. Each ticket is
// inserted with a provisional key to obtain its id, then updated with the
// derived final key. The caller's transaction makes the batch all-or-nothing.
func mintTicketsTx(tx *sql.Tx, cart *models.Cart, paymentID int64, purchaseDate time.Time, keyFn models.TicketKeyFunc) ([]*models.Ticket, error) {
	var tickets []*models.Ticket

	for i := range cart.Lines {
		line := &cart.Lines[i]

		var description string
		err := tx.QueryRow("SELECT description FROM offers WHERE id = $1", line.OfferID).Scan(&description)
		if err != nil {
			return nil, fmt.Errorf("failed to load offer %d description: %w", line.OfferID, err)
		}

		for unit := 0; unit < line.Quantity; unit++ {
			provisionalKey := "provisional:" + uuid.NewString()

			var ticketID int64
			err = tx.QueryRow(`
				INSERT INTO tickets (final_key, user_id, payment_id, offer_id, offer_description, purchase_date, scanned, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
				RETURNING id`,
				provisionalKey, cart.UserID, paymentID, line.OfferID, description, purchaseDate, time.Now(),
			).Scan(&ticketID)
			if err != nil {
				return nil, fmt.Errorf("failed to mint ticket for offer %d: %w", line.OfferID, err)
			}

			finalKey := keyFn(ticketID, cart.UserID, line.OfferID, purchaseDate)
			if _, err := tx.Exec("UPDATE tickets SET final_key = $1 WHERE id = $2", finalKey, ticketID); err != nil {
				return nil, fmt.Errorf("failed to set ticket key: %w", err)
			}

			tickets = append(tickets, &models.Ticket{
				ID:               ticketID,
				FinalKey:         finalKey,
				UserID:           cart.UserID,
				PaymentID:        paymentID,
				OfferID:          line.OfferID,
				OfferDescription: description,
				PurchaseDate:     purchaseDate,
			})
		}
	}

	return tickets, nil
}
