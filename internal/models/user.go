package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Authentication flows live at the
// boundary; the core only needs identity and display data for receipts.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

var userEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the user data
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}

	if len(u.Email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	if !userEmailRegex.MatchString(u.Email) {
		return errors.New("email format is invalid")
	}

	if strings.TrimSpace(u.FirstName) == "" {
		return errors.New("first name is required")
	}

	if strings.TrimSpace(u.LastName) == "" {
		return errors.New("last name is required")
	}

	return nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
