package services

import (
	"context"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService chains the cart freeze and the payment attempt into a
// single buyer-facing operation and sends the receipt afterwards.
type CheckoutService struct {
	cartService    *CartService
	paymentService *PaymentService
	userRepo       UserReader
	emailService   EmailService
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	cartService *CartService,
	paymentService *PaymentService,
	userRepo UserReader,
	emailService EmailService,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		cartService:    cartService,
		paymentService: paymentService,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
	}
}

// CompleteCheckout freezes the user's open cart and immediately submits
// payment for it. On success the receipt email is sent in the background
// so a slow mailer never delays the response.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, userID uuid.UUID, method models.PaymentMethod, token string) (*PaymentOutcome, error) {
	cart, err := s.cartService.Checkout(userID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.paymentService.SubmitPayment(ctx, userID, &models.SubmitPaymentRequest{
		CartID: cart.ID,
		Method: method,
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	go s.sendReceipt(userID, outcome)

	return outcome, nil
}

func (s *CheckoutService) sendReceipt(userID uuid.UUID, outcome *PaymentOutcome) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to load user for receipt",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}

	if err := s.emailService.SendReceipt(user, outcome.Payment, outcome.Tickets); err != nil {
		s.logger.Error("failed to send receipt",
			zap.Int64("payment_id", outcome.Payment.ID),
			zap.Error(err))
	}
}
