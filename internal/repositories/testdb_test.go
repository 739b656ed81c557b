package repositories

import (
	"database/sql"
	"testing"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// The repository tests run against an in-memory SQLite database. Every
// query in this package sticks to syntax both SQLite and PostgreSQL
// accept, so the same statements run unmodified under either driver.
const testSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE offers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	discipline TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL CHECK (quantity >= 0),
	price_cents INTEGER NOT NULL,
	expires_at TIMESTAMP,
	status TEXT NOT NULL,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE carts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	total_cents INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX idx_carts_one_open_per_user ON carts (user_id) WHERE status = 'open';

CREATE TABLE cart_lines (
	cart_id INTEGER NOT NULL,
	offer_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price_cents INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (cart_id, offer_id)
);

CREATE TABLE payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cart_id INTEGER NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	amount_cents INTEGER NOT NULL,
	method TEXT NOT NULL,
	status TEXT NOT NULL,
	reference TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_id INTEGER NOT NULL UNIQUE,
	amount_cents INTEGER NOT NULL,
	status TEXT NOT NULL,
	validated_at TIMESTAMP,
	details TEXT NOT NULL DEFAULT '',
	is_test BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE tickets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	final_key TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	payment_id INTEGER NOT NULL,
	offer_id INTEGER NOT NULL,
	offer_description TEXT NOT NULL DEFAULT '',
	purchase_date TIMESTAMP NOT NULL,
	scanned BOOLEAN NOT NULL DEFAULT FALSE,
	scanned_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	return db
}

func seedTestUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	repo := NewUserRepository(db)
	user, err := repo.Create(&models.User{
		Email:     uuid.NewString() + "@example.com",
		FirstName: "Marie",
		LastName:  "Dupont",
	})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func seedTestOffer(t *testing.T, db *sql.DB, quantity int, priceCents int64) *models.Offer {
	t.Helper()

	repo := NewOfferRepository(db)
	offer, err := repo.Create(&models.OfferCreateRequest{
		Type:        models.OfferSolo,
		Discipline:  "Athletics",
		Description: "100m final",
		Quantity:    quantity,
		PriceCents:  priceCents,
	})
	if err != nil {
		t.Fatalf("failed to seed offer: %v", err)
	}
	return offer
}
