package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartTestEnv struct {
	offers *MockOfferRepository
	carts  *MockCartRepository
	svc    *CartService
}

func newCartTestEnv() *cartTestEnv {
	offers := NewMockOfferRepository()
	carts := NewMockCartRepository()
	inventory := NewInventoryService(offers, zap.NewNop())
	return &cartTestEnv{
		offers: offers,
		carts:  carts,
		svc:    NewCartService(carts, inventory, zap.NewNop()),
	}
}

// cartRepoHooks wraps the in-memory cart repository so a test can
// interpose on individual calls.
type cartRepoHooks struct {
	*MockCartRepository
	beforeUpsert func()
	failUpsert   error
	failDelete   error
}

func (r *cartRepoHooks) UpsertLine(cartID, offerID int64, quantity int, unitPriceCents int64) error {
	if r.beforeUpsert != nil {
		r.beforeUpsert()
	}
	if r.failUpsert != nil {
		return r.failUpsert
	}
	return r.MockCartRepository.UpsertLine(cartID, offerID, quantity, unitPriceCents)
}

func (r *cartRepoHooks) DeleteLine(cartID, offerID int64) error {
	if r.failDelete != nil {
		return r.failDelete
	}
	return r.MockCartRepository.DeleteLine(cartID, offerID)
}

func newHookedCartTestEnv() (*cartTestEnv, *cartRepoHooks) {
	env := newCartTestEnv()
	hooks := &cartRepoHooks{MockCartRepository: env.carts}
	env.svc = NewCartService(hooks, NewInventoryService(env.offers, zap.NewNop()), zap.NewNop())
	return env, hooks
}

func (env *cartTestEnv) seedOffer(quantity int, priceCents int64) *models.Offer {
	return env.offers.Seed(&models.Offer{
		Type:        models.OfferSolo,
		Discipline:  "Athletics",
		Description: "100m final",
		Quantity:    quantity,
		PriceCents:  priceCents,
		Status:      models.OfferAvailable,
	})
}

func TestGetCartCreatesOpenCart(t *testing.T) {
	env := newCartTestEnv()
	userID := uuid.New()

	cart, err := env.svc.GetCart(userID)
	require.NoError(t, err)
	assert.Equal(t, models.CartOpen, cart.Status)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Lines)

	again, err := env.svc.GetCart(userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "second call should return the same open cart")
}

func TestAddLineReservesStockAndSnapshotsPrice(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	cart, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(1000), cart.Lines[0].UnitPriceCents)
	assert.Equal(t, int64(2000), cart.TotalCents)

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, remaining.Quantity)
}

func TestAddLineMergesExistingLine(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, int64(3000), cart.TotalCents)
}

func TestAddLineInsufficientStock(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(1, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 5})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining.Quantity, "failed add must not consume stock")
}

func TestAddLineUnavailableOffer(t *testing.T) {
	env := newCartTestEnv()
	past := time.Now().Add(-time.Hour)
	offer := env.offers.Seed(&models.Offer{
		Type:       models.OfferSolo,
		Discipline: "Swimming",
		Quantity:   10,
		PriceCents: 500,
		Status:     models.OfferAvailable,
		ExpiresAt:  &past,
	})

	_, err := env.svc.AddLine(uuid.New(), &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrOfferUnavailable)
}

func TestAddLineUnknownOffer(t *testing.T) {
	env := newCartTestEnv()

	_, err := env.svc.AddLine(uuid.New(), &models.AddLineRequest{OfferID: 42, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrOfferNotFound)
}

func TestConcurrentAddLineLastUnit(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(1, 1000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.AddLine(uuid.New(), &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			losses++
			assert.ErrorIs(t, err, models.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, wins, "exactly one buyer gets the last unit")
	assert.Equal(t, 1, losses)

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining.Quantity)
	assert.Equal(t, models.OfferSoldOut, remaining.Status)
}

func TestUpdateLineAdjustsStockByDelta(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := env.svc.UpdateLine(userID, &models.UpdateLineRequest{OfferID: offer.ID, NewQuantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, int64(5000), cart.TotalCents)

	remaining, _ := env.offers.GetByID(offer.ID)
	assert.Equal(t, 5, remaining.Quantity)

	cart, err = env.svc.UpdateLine(userID, &models.UpdateLineRequest{OfferID: offer.ID, NewQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)

	remaining, _ = env.offers.GetByID(offer.ID)
	assert.Equal(t, 9, remaining.Quantity)
}

func TestUpdateLineToZeroRemoves(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := env.svc.UpdateLine(userID, &models.UpdateLineRequest{OfferID: offer.ID, NewQuantity: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.TotalCents)

	remaining, _ := env.offers.GetByID(offer.ID)
	assert.Equal(t, 10, remaining.Quantity, "all stock returned")
}

func TestAddLineRacingCheckoutReleasesReservation(t *testing.T) {
	env, hooks := newHookedCartTestEnv()
	offer := env.seedOffer(5, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := env.svc.GetCart(userID)
	require.NoError(t, err)

	// Freeze the cart between the service's status read and the line write
	hooks.beforeUpsert = func() {
		_, err := env.carts.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
		require.NoError(t, err)
	}

	_, err = env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.ErrorIs(t, err, models.ErrCartNotOpen)

	frozen, err := env.carts.GetByIDForUser(cart.ID, userID)
	require.NoError(t, err)
	require.Len(t, frozen.Lines, 1)
	assert.Equal(t, 1, frozen.Lines[0].Quantity, "frozen line set must not change")
	assert.Equal(t, int64(1000), frozen.TotalCents, "frozen total must not change")

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining.Quantity, "the failed add returns its reservation")
}

func TestUpdateLineShrinkKeepsReservationOnFailure(t *testing.T) {
	env, hooks := newHookedCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 4})
	require.NoError(t, err)

	hooks.failUpsert = errors.New("write failed")
	_, err = env.svc.UpdateLine(userID, &models.UpdateLineRequest{OfferID: offer.ID, NewQuantity: 1})
	require.Error(t, err)

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining.Quantity, "the line still holds its 4 units")

	cart, err := env.svc.GetCart(userID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
}

func TestRemoveLineKeepsReservationOnFailure(t *testing.T) {
	env, hooks := newHookedCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	hooks.failDelete = errors.New("write failed")
	_, err = env.svc.RemoveLine(userID, offer.ID)
	require.Error(t, err)

	remaining, err := env.offers.GetByID(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, remaining.Quantity, "units stay reserved while the line exists")

	cart, err := env.svc.GetCart(userID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestUpdateLineMissing(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(10, 1000)
	userID := uuid.New()

	_, err := env.svc.GetCart(userID)
	require.NoError(t, err)

	_, err = env.svc.UpdateLine(userID, &models.UpdateLineRequest{OfferID: offer.ID, NewQuantity: 2})
	assert.ErrorIs(t, err, models.ErrLineNotFound)
}

func TestRemoveLineReleasesStock(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(5, 1000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := env.svc.RemoveLine(userID, offer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	remaining, _ := env.offers.GetByID(offer.ID)
	assert.Equal(t, 5, remaining.Quantity)
}

func TestClearCartReleasesEverything(t *testing.T) {
	env := newCartTestEnv()
	offerA := env.seedOffer(5, 1000)
	offerB := env.seedOffer(5, 2000)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offerA.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offerB.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := env.svc.ClearCart(userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.TotalCents)

	a, _ := env.offers.GetByID(offerA.ID)
	b, _ := env.offers.GetByID(offerB.ID)
	assert.Equal(t, 5, a.Quantity)
	assert.Equal(t, 5, b.Quantity)
}

func TestCheckoutFreezesCart(t *testing.T) {
	env := newCartTestEnv()
	offer := env.seedOffer(5, 1500)
	userID := uuid.New()

	_, err := env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := env.svc.Checkout(userID)
	require.NoError(t, err)
	assert.Equal(t, models.CartCheckedOut, cart.Status)
	assert.Equal(t, int64(3000), cart.TotalCents)

	// A new open cart does not exist; mutations must fail
	_, err = env.svc.AddLine(userID, &models.AddLineRequest{OfferID: offer.ID, Quantity: 1})
	require.NoError(t, err, "a fresh open cart is created for further shopping")
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newCartTestEnv()
	userID := uuid.New()

	_, err := env.svc.GetCart(userID)
	require.NoError(t, err)

	_, err = env.svc.Checkout(userID)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckoutWithoutCart(t *testing.T) {
	env := newCartTestEnv()

	_, err := env.svc.Checkout(uuid.New())
	assert.ErrorIs(t, err, models.ErrCartNotOpen)
}
