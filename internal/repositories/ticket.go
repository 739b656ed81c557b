package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
)

// TicketRepository handles ticket data operations. Tickets are minted by
// the pipeline repository inside the checkout transaction; this repository
// only reads and scans them.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = "id, final_key, user_id, payment_id, offer_id, offer_description, purchase_date, scanned, scanned_at, created_at"

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.FinalKey,
		&ticket.UserID,
		&ticket.PaymentID,
		&ticket.OfferID,
		&ticket.OfferDescription,
		&ticket.PurchaseDate,
		&ticket.Scanned,
		&ticket.ScannedAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ticket %d: %w", id, models.ErrTicketNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// GetByFinalKey retrieves a ticket by its final verification key
func (r *TicketRepository) GetByFinalKey(finalKey string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE final_key = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, finalKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket by key: %w", err)
	}

	return ticket, nil
}

// GetByUser retrieves a user's tickets, newest first
func (r *TicketRepository) GetByUser(userID uuid.UUID, limit, offset int) ([]*models.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE user_id = $1
		ORDER BY purchase_date DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// GetByPayment retrieves every ticket minted for a payment
func (r *TicketRepository) GetByPayment(paymentID int64) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE payment_id = $1 ORDER BY id`

	rows, err := r.db.Query(query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// MarkScanned marks a ticket as scanned exactly once. The scanned predicate
// in the WHERE clause makes concurrent scans race safely: only one wins.
func (r *TicketRepository) MarkScanned(finalKey string) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET scanned = TRUE, scanned_at = $1
		WHERE final_key = $2 AND scanned = FALSE`

	result, err := r.db.Exec(query, time.Now(), finalKey)
	if err != nil {
		return nil, fmt.Errorf("failed to mark ticket scanned: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		ticket, err := r.GetByFinalKey(finalKey)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("ticket %d scanned at %v: %w", ticket.ID, ticket.ScannedAt, models.ErrTicketAlreadyScanned)
	}

	return r.GetByFinalKey(finalKey)
}
