package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRepository interface for payment data operations
type PaymentRepository interface {
	CreatePending(cartID int64, userID uuid.UUID, amountCents int64, method models.PaymentMethod, reference string) (*models.Payment, error)
	GetByID(id int64) (*models.Payment, error)
	GetByCart(cartID int64, userID uuid.UUID) (*models.Payment, error)
	GetTransaction(paymentID int64) (*models.Transaction, error)
}

// PipelineRepository is the transactional finalizer for the checkout
// pipeline. Success mints tickets and marks the cart paid in one database
// transaction; failure records the decline and restores stock.
type PipelineRepository interface {
	FinalizeSuccess(cart *models.Cart, paymentID int64, details string, isTest bool, purchaseDate time.Time, keyFn models.TicketKeyFunc) ([]*models.Ticket, error)
	FinalizeFailure(cart *models.Cart, paymentID int64, txnStatus models.TransactionStatus, details string, isTest bool) error
}

// PaymentOutcome is what a settled payment attempt produced
type PaymentOutcome struct {
	Payment *models.Payment  `json:"payment"`
	Tickets []*models.Ticket `json:"tickets,omitempty"`
}

// PaymentService drives a checked-out cart through the gateway and hands
// the verdict to the pipeline repository for atomic settlement.
type PaymentService struct {
	paymentRepo    PaymentRepository
	cartRepo       CartRepository
	pipeline       PipelineRepository
	gateway        PaymentGateway
	keyFn          models.TicketKeyFunc
	gatewayTimeout time.Duration
	isTest         bool
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service. keyFn is the ticket key
// derivation applied during success settlement; isTest marks recorded
// transactions as simulated.
func NewPaymentService(
	paymentRepo PaymentRepository,
	cartRepo CartRepository,
	pipeline PipelineRepository,
	gateway PaymentGateway,
	keyFn models.TicketKeyFunc,
	gatewayTimeout time.Duration,
	isTest bool,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		cartRepo:       cartRepo,
		pipeline:       pipeline,
		gateway:        gateway,
		keyFn:          keyFn,
		gatewayTimeout: gatewayTimeout,
		isTest:         isTest,
		logger:         logger,
	}
}

// SubmitPayment charges the user's checked-out cart. A cart still open is
// not ready for payment; a cart already paid or failed cannot be paid
// again. The charge amount is always the cart total frozen at checkout,
// never a client-supplied figure.
func (s *PaymentService) SubmitPayment(ctx context.Context, userID uuid.UUID, req *models.SubmitPaymentRequest) (*PaymentOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByIDForUser(req.CartID, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case cart.IsOpen():
		return nil, fmt.Errorf("cart %d has not been checked out: %w", cart.ID, models.ErrCartNotReadyForPayment)
	case cart.IsTerminal():
		return nil, fmt.Errorf("cart %d is %s: %w", cart.ID, cart.GetStatusDisplayName(), models.ErrCartAlreadyFinalized)
	}

	// Get-or-create the pending payment. A pending row left behind by an
	// interrupted attempt (a finalize that failed transiently) is picked
	// up again, so a retry can still drive the cart to a terminal state;
	// the unique index on cart_id stays as the at-most-once backstop.
	payment, err := s.paymentRepo.GetByCart(cart.ID, userID)
	switch {
	case err == nil:
		if !payment.IsPending() {
			return nil, fmt.Errorf("cart %d already settled payment %d: %w", cart.ID, payment.ID, models.ErrCartAlreadyFinalized)
		}
	case errors.Is(err, models.ErrPaymentNotFound):
		reference := "pay_" + uuid.NewString()
		payment, err = s.paymentRepo.CreatePending(cart.ID, userID, cart.TotalCents, req.Method, reference)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.Charge(chargeCtx, payment.AmountCents, req.Method, req.Token)
	if err != nil {
		// Transport failure or timeout: settle as a gateway error so the
		// cart fails and stock returns to the pool.
		return nil, s.settleFailure(cart, payment, models.TransactionError,
			fmt.Sprintf("gateway call failed: %v", err), models.ErrPaymentGatewayError)
	}

	switch result.Status {
	case models.TransactionAuthorized:
		return s.settleSuccess(cart, payment, result)
	case models.TransactionDeclined:
		return nil, s.settleFailure(cart, payment, models.TransactionDeclined, result.Details, models.ErrPaymentDeclined)
	default:
		return nil, s.settleFailure(cart, payment, models.TransactionError, result.Details, models.ErrPaymentGatewayError)
	}
}

func (s *PaymentService) settleSuccess(cart *models.Cart, payment *models.Payment, result *GatewayResult) (*PaymentOutcome, error) {
	purchaseDate := time.Now().UTC()
	details := fmt.Sprintf("%s (ref %s)", result.Details, result.Reference)

	tickets, err := s.pipeline.FinalizeSuccess(cart, payment.ID, details, s.isTest, purchaseDate, s.keyFn)
	if err != nil {
		return nil, err
	}

	settled, err := s.paymentRepo.GetByID(payment.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment succeeded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("cart_id", cart.ID),
		zap.Int64("amount_cents", payment.AmountCents),
		zap.Int("tickets", len(tickets)))

	return &PaymentOutcome{Payment: settled, Tickets: tickets}, nil
}

func (s *PaymentService) settleFailure(cart *models.Cart, payment *models.Payment, txnStatus models.TransactionStatus, details string, sentinel error) error {
	if err := s.pipeline.FinalizeFailure(cart, payment.ID, txnStatus, details, s.isTest); err != nil {
		return err
	}

	s.logger.Warn("payment failed",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("cart_id", cart.ID),
		zap.String("transaction_status", string(txnStatus)),
		zap.String("details", details))

	return fmt.Errorf("payment %d: %s: %w", payment.ID, details, sentinel)
}

// GetPayment retrieves a payment by id, scoped to its owner
func (s *PaymentService) GetPayment(paymentID int64, userID uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, models.ErrUnauthorized
	}
	return payment, nil
}

// GetPaymentForCart retrieves the payment attached to a cart, if any
func (s *PaymentService) GetPaymentForCart(cartID int64, userID uuid.UUID) (*models.Payment, error) {
	return s.paymentRepo.GetByCart(cartID, userID)
}

// GetTransaction retrieves the gateway transaction behind a payment
func (s *PaymentService) GetTransaction(paymentID int64, userID uuid.UUID) (*models.Transaction, error) {
	if _, err := s.GetPayment(paymentID, userID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetTransaction(paymentID)
}
