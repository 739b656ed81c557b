package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
)

// CartRepository handles cart and cart line data operations
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

const cartColumns = "id, user_id, status, total_cents, created_at, updated_at"

func scanCart(row interface{ Scan(...interface{}) error }) (*models.Cart, error) {
	cart := &models.Cart{}
	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Status,
		&cart.TotalCents,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// CreateOpen creates a new open cart for a user. The partial unique index on
// (user_id) WHERE status = 'open' guarantees at most one open cart per user.
func (r *CartRepository) CreateOpen(userID uuid.UUID) (*models.Cart, error) {
	query := `
		INSERT INTO carts (user_id, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + cartColumns

	now := time.Now()
	cart, err := scanCart(r.db.QueryRow(query, userID, models.CartOpen, 0, now, now))
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart.Lines = []models.CartLine{}
	return cart, nil
}

// GetOpenByUser retrieves the user's open cart with its lines
func (r *CartRepository) GetOpenByUser(userID uuid.UUID) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND status = $2`

	cart, err := scanCart(r.db.QueryRow(query, userID, models.CartOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no open cart for user %s: %w", userID, models.ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get open cart: %w", err)
	}

	if err := r.loadLines(cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// GetByIDForUser retrieves a cart by id, scoped to its owning user
func (r *CartRepository) GetByIDForUser(cartID int64, userID uuid.UUID) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1 AND user_id = $2`

	cart, err := scanCart(r.db.QueryRow(query, cartID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart %d for user %s: %w", cartID, userID, models.ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := r.loadLines(cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *CartRepository) loadLines(cart *models.Cart) error {
	query := `
		SELECT cart_id, offer_id, quantity, unit_price_cents, created_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at, offer_id`

	rows, err := r.db.Query(query, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart lines: %w", err)
	}
	defer rows.Close()

	cart.Lines = []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		err := rows.Scan(
			&line.CartID,
			&line.OfferID,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	return rows.Err()
}

// guardOpenCart classifies a zero-row line mutation. It returns the error
// for a missing or no-longer-open cart, or nil when the cart is still open
// and the caller has to decide what the zero rows meant.
func (r *CartRepository) guardOpenCart(cartID int64) error {
	var status models.CartStatus
	err := r.db.QueryRow("SELECT status FROM carts WHERE id = $1", cartID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("cart %d: %w", cartID, models.ErrCartNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read cart status: %w", err)
	}
	if status != models.CartOpen {
		return fmt.Errorf("cart %d is %s: %w", cartID, status, models.ErrCartNotOpen)
	}
	return nil
}

// UpsertLine inserts a cart line, or replaces the quantity of an existing
// line for the same offer. The unit price snapshot of an existing line is
// left untouched. The statement only matches an open cart, so a line write
// racing a checkout cannot land in a frozen cart.
func (r *CartRepository) UpsertLine(cartID, offerID int64, quantity int, unitPriceCents int64) error {
	query := `
		INSERT INTO cart_lines (cart_id, offer_id, quantity, unit_price_cents, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM carts WHERE id = $6 AND status = $7)
		ON CONFLICT (cart_id, offer_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`

	result, err := r.db.Exec(query, cartID, offerID, quantity, unitPriceCents, time.Now(), cartID, models.CartOpen)
	if err != nil {
		return fmt.Errorf("failed to upsert cart line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if gerr := r.guardOpenCart(cartID); gerr != nil {
			return gerr
		}
		return fmt.Errorf("failed to upsert line for cart %d", cartID)
	}

	return nil
}

// DeleteLine removes one offer line from an open cart
func (r *CartRepository) DeleteLine(cartID, offerID int64) error {
	query := `
		DELETE FROM cart_lines
		WHERE cart_id = $1 AND offer_id = $2
		  AND EXISTS (SELECT 1 FROM carts WHERE id = $3 AND status = $4)`

	result, err := r.db.Exec(query, cartID, offerID, cartID, models.CartOpen)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if gerr := r.guardOpenCart(cartID); gerr != nil {
			return gerr
		}
		return fmt.Errorf("offer %d in cart %d: %w", offerID, cartID, models.ErrLineNotFound)
	}

	return nil
}

// DeleteLines removes every line from an open cart
func (r *CartRepository) DeleteLines(cartID int64) error {
	query := `
		DELETE FROM cart_lines
		WHERE cart_id = $1
		  AND EXISTS (SELECT 1 FROM carts WHERE id = $2 AND status = $3)`

	result, err := r.db.Exec(query, cartID, cartID, models.CartOpen)
	if err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// An already empty open cart is fine; a frozen cart is not
		return r.guardOpenCart(cartID)
	}

	return nil
}

// RecomputeTotal recomputes the cart total from its current line set and
// persists it. Recomputing twice without mutation yields the same total.
// Only an open cart can be recomputed; a frozen total never moves.
func (r *CartRepository) RecomputeTotal(cartID int64) (int64, error) {
	query := `
		UPDATE carts
		SET total_cents = COALESCE((SELECT SUM(quantity * unit_price_cents) FROM cart_lines WHERE cart_id = $1), 0),
		    updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING total_cents`

	var total int64
	err := r.db.QueryRow(query, cartID, time.Now(), cartID, models.CartOpen).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if gerr := r.guardOpenCart(cartID); gerr != nil {
				return 0, gerr
			}
			return 0, fmt.Errorf("failed to recompute total for cart %d", cartID)
		}
		return 0, fmt.Errorf("failed to recompute cart total: %w", err)
	}

	return total, nil
}

// TransitionStatus moves a cart from one status to another. The status
// predicate in the WHERE clause serializes concurrent transitions: a stale
// caller affects zero rows and gets reported false. The total is refreshed
// in the same statement, so the amount frozen at checkout always matches
// the line set the transition saw.
func (r *CartRepository) TransitionStatus(cartID int64, from, to models.CartStatus) (bool, error) {
	query := `
		UPDATE carts
		SET status = $1,
		    total_cents = COALESCE((SELECT SUM(quantity * unit_price_cents) FROM cart_lines WHERE cart_id = $2), 0),
		    updated_at = $3
		WHERE id = $4 AND status = $5`

	result, err := r.db.Exec(query, to, cartID, time.Now(), cartID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition cart status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
