package services

import (
	"context"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"

	"github.com/google/uuid"
)

// Service interfaces consumed by the HTTP layer. Handlers depend on these
// rather than the concrete services so tests can swap implementations.

// OfferProvider exposes the offer catalog and its admin operations
type OfferProvider interface {
	GetOffer(offerID int64) (*models.Offer, error)
	SearchOffers(filters repositories.OfferSearchFilters) ([]*models.Offer, int, error)
	CreateOffer(req *models.OfferCreateRequest) (*models.Offer, error)
	UpdateOffer(offerID int64, req *models.OfferUpdateRequest) (*models.Offer, error)
	WithdrawOffer(offerID int64) error
	ExpireDueOffers() (int64, error)
	GetSales() ([]*repositories.OfferSales, error)
}

// CartProvider exposes the cart ledger
type CartProvider interface {
	GetCart(userID uuid.UUID) (*models.Cart, error)
	AddLine(userID uuid.UUID, req *models.AddLineRequest) (*models.Cart, error)
	UpdateLine(userID uuid.UUID, req *models.UpdateLineRequest) (*models.Cart, error)
	RemoveLine(userID uuid.UUID, offerID int64) (*models.Cart, error)
	ClearCart(userID uuid.UUID) (*models.Cart, error)
	Checkout(userID uuid.UUID) (*models.Cart, error)
	GetCartForUser(cartID int64, userID uuid.UUID) (*models.Cart, error)
}

// PaymentProvider exposes payment submission and lookup
type PaymentProvider interface {
	SubmitPayment(ctx context.Context, userID uuid.UUID, req *models.SubmitPaymentRequest) (*PaymentOutcome, error)
	GetPayment(paymentID int64, userID uuid.UUID) (*models.Payment, error)
	GetPaymentForCart(cartID int64, userID uuid.UUID) (*models.Payment, error)
	GetTransaction(paymentID int64, userID uuid.UUID) (*models.Transaction, error)
}

// TicketProvider exposes ticket lookup, verification and gate scanning
type TicketProvider interface {
	GetUserTickets(userID uuid.UUID, limit, offset int) ([]*models.Ticket, error)
	GetTicketsByPayment(paymentID int64) ([]*models.Ticket, error)
	VerifyTicket(finalKey string) (*models.TicketVerification, error)
	ScanTicket(finalKey string) (*models.Ticket, error)
}

// CheckoutProvider exposes the one-shot checkout-and-pay flow
type CheckoutProvider interface {
	CompleteCheckout(ctx context.Context, userID uuid.UUID, method models.PaymentMethod, token string) (*PaymentOutcome, error)
}
