package services

import (
	"fmt"
	"time"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"

	"go.uber.org/zap"
)

// OfferRepository interface for offer data operations
type OfferRepository interface {
	Create(req *models.OfferCreateRequest) (*models.Offer, error)
	GetByID(id int64) (*models.Offer, error)
	Update(id int64, req *models.OfferUpdateRequest) (*models.Offer, error)
	Withdraw(id int64) error
	Reserve(id int64, quantity int) error
	Release(id int64, quantity int) error
	PriceOf(id int64) (int64, error)
	Search(filters repositories.OfferSearchFilters) ([]*models.Offer, int, error)
	ExpireDue(now time.Time) (int64, error)
	GetSales() ([]*repositories.OfferSales, error)
}

// InventoryService owns offer stock. Reservations and releases are
// serialized per offer by the repository's guarded updates.
type InventoryService struct {
	offerRepo OfferRepository
	logger    *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(offerRepo OfferRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		offerRepo: offerRepo,
		logger:    logger,
	}
}

// Reserve takes quantity units out of an offer's remaining stock
func (s *InventoryService) Reserve(offerID int64, quantity int) error {
	if err := s.offerRepo.Reserve(offerID, quantity); err != nil {
		return err
	}

	s.logger.Info("stock reserved",
		zap.Int64("offer_id", offerID),
		zap.Int("quantity", quantity))
	return nil
}

// Release returns quantity units to an offer's remaining stock
func (s *InventoryService) Release(offerID int64, quantity int) error {
	if err := s.offerRepo.Release(offerID, quantity); err != nil {
		return err
	}

	s.logger.Info("stock released",
		zap.Int64("offer_id", offerID),
		zap.Int("quantity", quantity))
	return nil
}

// PriceOf returns the current unit price of an offer in cents
func (s *InventoryService) PriceOf(offerID int64) (int64, error) {
	return s.offerRepo.PriceOf(offerID)
}

// IsPurchasable reports whether the offer can currently be added to a cart
func (s *InventoryService) IsPurchasable(offerID int64) (bool, error) {
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return false, err
	}
	return offer.IsPurchasable(time.Now()), nil
}

// GetOffer retrieves one offer
func (s *InventoryService) GetOffer(offerID int64) (*models.Offer, error) {
	return s.offerRepo.GetByID(offerID)
}

// SearchOffers lists offers with filters and pagination
func (s *InventoryService) SearchOffers(filters repositories.OfferSearchFilters) ([]*models.Offer, int, error) {
	return s.offerRepo.Search(filters)
}

// CreateOffer adds a new offer to the catalog
func (s *InventoryService) CreateOffer(req *models.OfferCreateRequest) (*models.Offer, error) {
	offer, err := s.offerRepo.Create(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer created",
		zap.Int64("offer_id", offer.ID),
		zap.String("discipline", offer.Discipline),
		zap.String("type", string(offer.Type)))
	return offer, nil
}

// UpdateOffer updates an offer's mutable attributes
func (s *InventoryService) UpdateOffer(offerID int64, req *models.OfferUpdateRequest) (*models.Offer, error) {
	return s.offerRepo.Update(offerID, req)
}

// WithdrawOffer forces an offer out of sale
func (s *InventoryService) WithdrawOffer(offerID int64) error {
	if err := s.offerRepo.Withdraw(offerID); err != nil {
		return err
	}

	s.logger.Warn("offer withdrawn", zap.Int64("offer_id", offerID))
	return nil
}

// ExpireDueOffers sweeps offers whose expiration has passed
func (s *InventoryService) ExpireDueOffers() (int64, error) {
	count, err := s.offerRepo.ExpireDue(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}

	if count > 0 {
		s.logger.Info("offers expired", zap.Int64("count", count))
	}
	return count, nil
}

// GetSales returns units sold per offer
func (s *InventoryService) GetSales() ([]*repositories.OfferSales, error) {
	return s.offerRepo.GetSales()
}
