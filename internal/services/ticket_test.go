package services

import (
	"testing"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTicketTestEnv() (*TicketService, *MockTicketRepository, *MockUserRepository) {
	tickets := NewMockTicketRepository()
	users := NewMockUserRepository()
	svc := NewTicketService(tickets, users, []byte("ticket-test-salt"), zap.NewNop())
	return svc, tickets, users
}

func mintTestTicket(svc *TicketService, tickets *MockTicketRepository, userID uuid.UUID) *models.Ticket {
	purchaseDate := time.Now().UTC()
	ticket := tickets.add(&models.Ticket{
		FinalKey:         "provisional:" + uuid.NewString(),
		UserID:           userID,
		PaymentID:        1,
		OfferID:          10,
		OfferDescription: "100m final",
		PurchaseDate:     purchaseDate,
		CreatedAt:        purchaseDate,
	})
	ticket.FinalKey = svc.KeyFunc()(ticket.ID, userID, 10, purchaseDate)
	tickets.setFinalKey(ticket.ID, ticket.FinalKey)
	return ticket
}

func TestVerifyTicket(t *testing.T) {
	svc, tickets, users := newTicketTestEnv()
	user := users.Seed(&models.User{
		Email:     "holder@example.com",
		FirstName: "Jean",
		LastName:  "Martin",
	})
	ticket := mintTestTicket(svc, tickets, user.ID)

	verification, err := svc.VerifyTicket(ticket.FinalKey)
	require.NoError(t, err)

	assert.Equal(t, ticket.ID, verification.TicketID)
	assert.Equal(t, user.ID, verification.UserID)
	assert.Equal(t, "Jean Martin", verification.UserName)
	assert.Equal(t, []string{"100m final"}, verification.OfferDescriptions)
}

func TestVerifyTicketUnknownKey(t *testing.T) {
	svc, _, _ := newTicketTestEnv()

	_, err := svc.VerifyTicket("no-such-key")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestVerifyTicketRejectsForgedKey(t *testing.T) {
	svc, tickets, users := newTicketTestEnv()
	user := users.Seed(&models.User{Email: "holder@example.com"})
	ticket := mintTestTicket(svc, tickets, user.ID)

	// A stored key that no longer matches its ticket identity must fail
	tickets.setFinalKey(ticket.ID, "forged-key-value")

	_, err := svc.VerifyTicket("forged-key-value")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestScanTicketOnce(t *testing.T) {
	svc, tickets, users := newTicketTestEnv()
	user := users.Seed(&models.User{Email: "holder@example.com"})
	ticket := mintTestTicket(svc, tickets, user.ID)

	scanned, err := svc.ScanTicket(ticket.FinalKey)
	require.NoError(t, err)
	assert.True(t, scanned.Scanned)
	assert.NotNil(t, scanned.ScannedAt)

	_, err = svc.ScanTicket(ticket.FinalKey)
	assert.ErrorIs(t, err, models.ErrTicketAlreadyScanned)
}

func TestGetUserTicketsPagination(t *testing.T) {
	svc, tickets, users := newTicketTestEnv()
	user := users.Seed(&models.User{Email: "holder@example.com"})

	for i := 0; i < 5; i++ {
		mintTestTicket(svc, tickets, user.ID)
	}
	mintTestTicket(svc, tickets, uuid.New())

	page, err := svc.GetUserTickets(user.ID, 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := svc.GetUserTickets(user.ID, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	all, err := svc.GetUserTickets(user.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "out-of-range limit falls back to the default page size")
}
