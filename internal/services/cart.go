package services

import (
	"errors"
	"fmt"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartRepository interface for cart data operations
type CartRepository interface {
	CreateOpen(userID uuid.UUID) (*models.Cart, error)
	GetOpenByUser(userID uuid.UUID) (*models.Cart, error)
	GetByIDForUser(cartID int64, userID uuid.UUID) (*models.Cart, error)
	UpsertLine(cartID, offerID int64, quantity int, unitPriceCents int64) error
	DeleteLine(cartID, offerID int64) error
	DeleteLines(cartID int64) error
	RecomputeTotal(cartID int64) (int64, error)
	TransitionStatus(cartID int64, from, to models.CartStatus) (bool, error)
}

// InventoryReserver is the slice of the inventory service the cart ledger
// needs: reservation, release and the read-only purchase queries.
type InventoryReserver interface {
	Reserve(offerID int64, quantity int) error
	Release(offerID int64, quantity int) error
	PriceOf(offerID int64) (int64, error)
	IsPurchasable(offerID int64) (bool, error)
}

// CartService is the cart ledger: it holds line items, keeps the cart total
// in step with them and enforces the cart status transitions.
type CartService struct {
	cartRepo  CartRepository
	inventory InventoryReserver
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cartRepo CartRepository, inventory InventoryReserver, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		inventory: inventory,
		logger:    logger,
	}
}

// GetCart returns the user's open cart, creating one when absent
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOpenByUser(userID)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			return s.cartRepo.CreateOpen(userID)
		}
		return nil, err
	}
	return cart, nil
}

// AddLine reserves stock for an offer and appends it to the user's open
// cart, merging into an existing line for the same offer. The unit price is
// snapshotted on first add.
func (s *CartService) AddLine(userID uuid.UUID, req *models.AddLineRequest) (*models.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, fmt.Errorf("cart %d is %s: %w", cart.ID, cart.GetStatusDisplayName(), models.ErrCartNotOpen)
	}

	purchasable, err := s.inventory.IsPurchasable(req.OfferID)
	if err != nil {
		return nil, err
	}
	if !purchasable {
		return nil, fmt.Errorf("offer %d: %w", req.OfferID, models.ErrOfferUnavailable)
	}

	// Reserve before touching the cart so two carts cannot hold the same unit
	if err := s.inventory.Reserve(req.OfferID, req.Quantity); err != nil {
		return nil, err
	}

	newQuantity := req.Quantity
	unitPriceCents := int64(0)
	if existing := cart.FindLine(req.OfferID); existing != nil {
		newQuantity += existing.Quantity
		unitPriceCents = existing.UnitPriceCents
	} else {
		unitPriceCents, err = s.inventory.PriceOf(req.OfferID)
		if err != nil {
			s.releaseQuietly(req.OfferID, req.Quantity)
			return nil, err
		}
	}

	if err := s.cartRepo.UpsertLine(cart.ID, req.OfferID, newQuantity, unitPriceCents); err != nil {
		s.releaseQuietly(req.OfferID, req.Quantity)
		return nil, err
	}

	if _, err := s.cartRepo.RecomputeTotal(cart.ID); err != nil {
		return nil, err
	}

	s.logger.Info("cart line added",
		zap.Int64("cart_id", cart.ID),
		zap.Int64("offer_id", req.OfferID),
		zap.Int("quantity", req.Quantity))

	return s.cartRepo.GetOpenByUser(userID)
}

// UpdateLine changes the quantity of an offer already in the cart,
// reserving or releasing the stock delta. A new quantity of zero removes
// the line.
func (s *CartService) UpdateLine(userID uuid.UUID, req *models.UpdateLineRequest) (*models.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.NewQuantity == 0 {
		return s.RemoveLine(userID, req.OfferID)
	}

	cart, err := s.cartRepo.GetOpenByUser(userID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(req.OfferID)
	if line == nil {
		return nil, fmt.Errorf("offer %d: %w", req.OfferID, models.ErrLineNotFound)
	}

	delta := req.NewQuantity - line.Quantity
	switch {
	case delta > 0:
		if err := s.inventory.Reserve(req.OfferID, delta); err != nil {
			return nil, err
		}
	case delta < 0:
		if err := s.inventory.Release(req.OfferID, -delta); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.UpsertLine(cart.ID, req.OfferID, req.NewQuantity, line.UnitPriceCents); err != nil {
		// The line keeps its old quantity, so the stock adjustment is undone
		switch {
		case delta > 0:
			s.releaseQuietly(req.OfferID, delta)
		case delta < 0:
			s.reserveQuietly(req.OfferID, -delta)
		}
		return nil, err
	}

	if _, err := s.cartRepo.RecomputeTotal(cart.ID); err != nil {
		return nil, err
	}

	return s.cartRepo.GetOpenByUser(userID)
}

// RemoveLine drops an offer from the cart and releases its reservation
func (s *CartService) RemoveLine(userID uuid.UUID, offerID int64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOpenByUser(userID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(offerID)
	if line == nil {
		return nil, fmt.Errorf("offer %d: %w", offerID, models.ErrLineNotFound)
	}

	// Release first: a released unit the line still holds can be taken
	// back, a deleted line whose units stay reserved cannot.
	if err := s.inventory.Release(offerID, line.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteLine(cart.ID, offerID); err != nil {
		s.reserveQuietly(offerID, line.Quantity)
		return nil, err
	}

	if _, err := s.cartRepo.RecomputeTotal(cart.ID); err != nil {
		return nil, err
	}

	return s.cartRepo.GetOpenByUser(userID)
}

// ClearCart releases every reservation and empties the cart
func (s *CartService) ClearCart(userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOpenByUser(userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Lines {
		if err := s.inventory.Release(cart.Lines[i].OfferID, cart.Lines[i].Quantity); err != nil {
			for j := 0; j < i; j++ {
				s.reserveQuietly(cart.Lines[j].OfferID, cart.Lines[j].Quantity)
			}
			return nil, err
		}
	}

	if err := s.cartRepo.DeleteLines(cart.ID); err != nil {
		for i := range cart.Lines {
			s.reserveQuietly(cart.Lines[i].OfferID, cart.Lines[i].Quantity)
		}
		return nil, err
	}

	if _, err := s.cartRepo.RecomputeTotal(cart.ID); err != nil {
		return nil, err
	}

	return s.cartRepo.GetOpenByUser(userID)
}

// Checkout freezes the cart for payment: a non-empty open cart transitions
// to checked out and its total becomes the amount to be paid.
func (s *CartService) Checkout(userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetOpenByUser(userID)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			return nil, fmt.Errorf("no open cart: %w", models.ErrCartNotOpen)
		}
		return nil, err
	}

	if cart.IsEmpty() {
		return nil, fmt.Errorf("cart %d: %w", cart.ID, models.ErrEmptyCart)
	}

	transitioned, err := s.cartRepo.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, fmt.Errorf("cart %d: %w", cart.ID, models.ErrCartNotOpen)
	}

	s.logger.Info("cart checked out",
		zap.Int64("cart_id", cart.ID),
		zap.Int64("total_cents", cart.TotalCents))

	return s.cartRepo.GetByIDForUser(cart.ID, userID)
}

// GetCartForUser retrieves any cart by id, scoped to its owner
func (s *CartService) GetCartForUser(cartID int64, userID uuid.UUID) (*models.Cart, error) {
	return s.cartRepo.GetByIDForUser(cartID, userID)
}

func (s *CartService) releaseQuietly(offerID int64, quantity int) {
	if err := s.inventory.Release(offerID, quantity); err != nil {
		s.logger.Error("failed to release stock after cart error",
			zap.Int64("offer_id", offerID),
			zap.Int("quantity", quantity),
			zap.Error(err))
	}
}

func (s *CartService) reserveQuietly(offerID int64, quantity int) {
	if err := s.inventory.Reserve(offerID, quantity); err != nil {
		s.logger.Error("failed to re-reserve stock after cart error",
			zap.Int64("offer_id", offerID),
			zap.Int("quantity", quantity),
			zap.Error(err))
	}
}
