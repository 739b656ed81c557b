package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"games-ticketing-platform/internal/models"
)

// OfferRepository handles offer data operations
type OfferRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// OfferSearchFilters represents filters for offer search
type OfferSearchFilters struct {
	Discipline string             // Filter by discipline
	Type       models.OfferType   // Filter by offer type
	Status     models.OfferStatus // Filter by status
	Featured   *bool              // Filter by featured flag
	Limit      int                // Number of results to return
	Offset     int                // Number of results to skip
}

// OfferSales represents sold units for one offer
type OfferSales struct {
	OfferID    int64  `json:"offer_id" db:"offer_id"`
	Discipline string `json:"discipline" db:"discipline"`
	UnitsSold  int    `json:"units_sold" db:"units_sold"`
}

const offerColumns = "id, type, discipline, description, quantity, price_cents, expires_at, status, featured, created_at, updated_at"

func scanOffer(row interface{ Scan(...interface{}) error }) (*models.Offer, error) {
	offer := &models.Offer{}
	err := row.Scan(
		&offer.ID,
		&offer.Type,
		&offer.Discipline,
		&offer.Description,
		&offer.Quantity,
		&offer.PriceCents,
		&offer.ExpiresAt,
		&offer.Status,
		&offer.Featured,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Create creates a new offer
func (r *OfferRepository) Create(req *models.OfferCreateRequest) (*models.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	status := models.OfferAvailable
	if req.Quantity == 0 {
		status = models.OfferSoldOut
	}

	query := `
		INSERT INTO offers (type, discipline, description, quantity, price_cents, expires_at, status, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + offerColumns

	now := time.Now()
	offer, err := scanOffer(r.db.QueryRow(
		query,
		req.Type,
		req.Discipline,
		req.Description,
		req.Quantity,
		req.PriceCents,
		req.ExpiresAt,
		status,
		req.Featured,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	return offer, nil
}

// GetByID retrieves an offer by ID
func (r *OfferRepository) GetByID(id int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := scanOffer(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// Update updates the mutable attributes of an offer
func (r *OfferRepository) Update(id int64, req *models.OfferUpdateRequest) (*models.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE offers
		SET description = $1, quantity = $2, price_cents = $3, expires_at = $4, featured = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + offerColumns

	offer, err := scanOffer(r.db.QueryRow(
		query,
		req.Description,
		req.Quantity,
		req.PriceCents,
		req.ExpiresAt,
		req.Featured,
		time.Now(),
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
		}
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	return offer, nil
}

// Withdraw forces an offer out of sale regardless of remaining stock
func (r *OfferRepository) Withdraw(id int64) error {
	query := `UPDATE offers SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, models.OfferWithdrawn, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to withdraw offer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
	}

	return nil
}

// Reserve atomically decrements remaining stock for an offer. The guarded
// UPDATE serializes concurrent reservations on the same offer: if only one
// unit remains, exactly one of two concurrent calls succeeds. Reaching zero
// flips the offer to sold out in the same statement.
func (r *OfferRepository) Reserve(id int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive: %w", models.ErrInvalidInput)
	}

	query := `
		UPDATE offers
		SET quantity = quantity - $1,
		    status = CASE WHEN quantity - $2 <= 0 THEN 'sold_out' ELSE status END,
		    updated_at = $3
		WHERE id = $4
		  AND status = 'available'
		  AND quantity >= $5
		  AND (expires_at IS NULL OR expires_at > $6)`

	now := time.Now()
	result, err := r.db.Exec(query, quantity, quantity, now, id, quantity, now)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing updated: re-read the row to report the precise precondition
	offer, err := r.GetByID(id)
	if err != nil {
		return err
	}

	if !offer.IsPurchasable(now) {
		return fmt.Errorf("offer %d is %s: %w", id, offer.GetStatusDisplayName(), models.ErrOfferUnavailable)
	}

	return fmt.Errorf("only %d left for offer %d: %w", offer.Quantity, id, models.ErrInsufficientStock)
}

// Release atomically returns stock to an offer. A sold-out offer becomes
// available again when stock returns and the offer has not expired.
func (r *OfferRepository) Release(id int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release quantity must be positive: %w", models.ErrInvalidInput)
	}

	query := `
		UPDATE offers
		SET quantity = quantity + $1,
		    status = CASE WHEN status = 'sold_out' AND (expires_at IS NULL OR expires_at > $2) THEN 'available' ELSE status END,
		    updated_at = $3
		WHERE id = $4`

	now := time.Now()
	result, err := r.db.Exec(query, quantity, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
	}

	return nil
}

// PriceOf returns the current unit price of an offer in cents
func (r *OfferRepository) PriceOf(id int64) (int64, error) {
	var priceCents int64
	err := r.db.QueryRow("SELECT price_cents FROM offers WHERE id = $1", id).Scan(&priceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
		}
		return 0, fmt.Errorf("failed to get offer price: %w", err)
	}
	return priceCents, nil
}

// Search searches for offers with filters and pagination
func (r *OfferRepository) Search(filters OfferSearchFilters) ([]*models.Offer, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.Discipline != "" {
		conditions = append(conditions, fmt.Sprintf("discipline = $%d", argIndex))
		args = append(args, filters.Discipline)
		argIndex++
	}

	if filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, filters.Type)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIndex))
		args = append(args, *filters.Featured)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM offers %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get offer count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM offers
		%s
		ORDER BY discipline, id
		LIMIT $%d OFFSET $%d`,
		offerColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search offers: %w", err)
	}
	defer rows.Close()

	var offers []*models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, total, nil
}

// ExpireDue flips every offer whose expiration has passed to expired and
// returns how many were affected.
func (r *OfferRepository) ExpireDue(now time.Time) (int64, error) {
	query := `
		UPDATE offers
		SET status = 'expired', updated_at = $1
		WHERE status IN ('available', 'sold_out')
		  AND expires_at IS NOT NULL
		  AND expires_at <= $2`

	result, err := r.db.Exec(query, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// GetSales returns the number of units sold per offer, derived from minted tickets
func (r *OfferRepository) GetSales() ([]*OfferSales, error) {
	query := `
		SELECT o.id, o.discipline, COUNT(t.id) AS units_sold
		FROM offers o
		LEFT JOIN tickets t ON t.offer_id = o.id
		GROUP BY o.id, o.discipline
		ORDER BY units_sold DESC, o.id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer sales: %w", err)
	}
	defer rows.Close()

	var sales []*OfferSales
	for rows.Next() {
		s := &OfferSales{}
		if err := rows.Scan(&s.OfferID, &s.Discipline, &s.UnitsSold); err != nil {
			return nil, fmt.Errorf("failed to scan offer sales: %w", err)
		}
		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer sales: %w", err)
	}

	return sales, nil
}
