package services

import (
	"context"
	"testing"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCheckoutTestEnv(t *testing.T) (*paymentTestEnv, *CheckoutService, *MockEmailService) {
	t.Helper()

	env := newPaymentTestEnv(t, NewSimulatedGateway(PolicyToken, 0, 0, zap.NewNop()))
	email := NewMockEmailService()
	checkout := NewCheckoutService(env.cartSvc, env.paySvc, env.users, email, zap.NewNop())
	return env, checkout, email
}

func TestCompleteCheckoutHappyPath(t *testing.T) {
	env, checkout, email := newCheckoutTestEnv(t)

	user := env.users.Seed(&models.User{
		Email:     "buyer@example.com",
		FirstName: "Marie",
		LastName:  "Dupont",
	})

	offer := env.offers.Seed(&models.Offer{
		Type: models.OfferSolo, Discipline: "Swimming", Description: "Finals",
		Quantity: 3, PriceCents: 7000, Status: models.OfferAvailable,
	})
	_, err := env.cartSvc.AddLine(user.ID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	outcome, err := checkout.CompleteCheckout(context.Background(), user.ID, models.MethodCard, "tok_visa")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSucceeded, outcome.Payment.Status)
	assert.Len(t, outcome.Tickets, 2)

	assert.Eventually(t, func() bool {
		sends := email.Sends()
		return len(sends) == 1 &&
			sends[0].To == "buyer@example.com" &&
			sends[0].Tickets == 2
	}, time.Second, 10*time.Millisecond, "receipt email sent in the background")
}

func TestCompleteCheckoutDeclineSendsNoReceipt(t *testing.T) {
	env, checkout, email := newCheckoutTestEnv(t)

	user := env.users.Seed(&models.User{Email: "buyer@example.com"})
	offer := env.offers.Seed(&models.Offer{
		Type: models.OfferSolo, Discipline: "Judo", Quantity: 3, PriceCents: 4500,
		Status: models.OfferAvailable,
	})
	_, err := env.cartSvc.AddLine(user.ID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = checkout.CompleteCheckout(context.Background(), user.ID, models.MethodCard, TokenDecline)
	require.ErrorIs(t, err, models.ErrPaymentDeclined)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, email.Sends())
}

func TestCompleteCheckoutEmptyCart(t *testing.T) {
	env, checkout, _ := newCheckoutTestEnv(t)

	user := env.users.Seed(&models.User{Email: "buyer@example.com"})
	_, err := env.cartSvc.GetCart(user.ID)
	require.NoError(t, err)

	_, err = checkout.CompleteCheckout(context.Background(), user.ID, models.MethodCard, "")
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}
