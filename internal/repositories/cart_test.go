package repositories

import (
	"errors"
	"testing"

	"games-ticketing-platform/internal/models"
)

func TestCartCreateAndGetOpen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)

	_, err := repo.GetOpenByUser(userID)
	if !errors.Is(err, models.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	cart, err := repo.CreateOpen(userID)
	if err != nil {
		t.Fatalf("CreateOpen failed: %v", err)
	}
	if cart.Status != models.CartOpen || cart.TotalCents != 0 {
		t.Errorf("new cart: status=%s total=%d, want open/0", cart.Status, cart.TotalCents)
	}

	got, err := repo.GetOpenByUser(userID)
	if err != nil {
		t.Fatalf("GetOpenByUser failed: %v", err)
	}
	if got.ID != cart.ID {
		t.Errorf("GetOpenByUser returned cart %d, want %d", got.ID, cart.ID)
	}
}

func TestCartOneOpenPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)

	if _, err := repo.CreateOpen(userID); err != nil {
		t.Fatalf("CreateOpen failed: %v", err)
	}
	if _, err := repo.CreateOpen(userID); err == nil {
		t.Error("second open cart for the same user should violate the unique index")
	}
}

func TestCartUpsertLinePreservesPriceSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)
	offer := seedTestOffer(t, db, 10, 1000)

	cart, err := repo.CreateOpen(userID)
	if err != nil {
		t.Fatalf("CreateOpen failed: %v", err)
	}

	if err := repo.UpsertLine(cart.ID, offer.ID, 2, 1000); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}
	// Second upsert changes the quantity but not the stored unit price
	if err := repo.UpsertLine(cart.ID, offer.ID, 5, 9999); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}

	got, err := repo.GetOpenByUser(userID)
	if err != nil {
		t.Fatalf("GetOpenByUser failed: %v", err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	if got.Lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", got.Lines[0].Quantity)
	}
	if got.Lines[0].UnitPriceCents != 1000 {
		t.Errorf("unit price = %d, want the original snapshot 1000", got.Lines[0].UnitPriceCents)
	}
}

func TestCartRecomputeTotal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)
	offerA := seedTestOffer(t, db, 10, 1000)
	offerB := seedTestOffer(t, db, 10, 2500)

	cart, _ := repo.CreateOpen(userID)
	if err := repo.UpsertLine(cart.ID, offerA.ID, 2, 1000); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}
	if err := repo.UpsertLine(cart.ID, offerB.ID, 1, 2500); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}

	total, err := repo.RecomputeTotal(cart.ID)
	if err != nil {
		t.Fatalf("RecomputeTotal failed: %v", err)
	}
	if total != 4500 {
		t.Errorf("total = %d, want 4500", total)
	}

	if err := repo.DeleteLine(cart.ID, offerA.ID); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}
	total, _ = repo.RecomputeTotal(cart.ID)
	if total != 2500 {
		t.Errorf("total after delete = %d, want 2500", total)
	}

	if err := repo.DeleteLines(cart.ID); err != nil {
		t.Fatalf("DeleteLines failed: %v", err)
	}
	total, _ = repo.RecomputeTotal(cart.ID)
	if total != 0 {
		t.Errorf("total after clear = %d, want 0", total)
	}
}

func TestCartLineMutationsBlockedAfterCheckout(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)
	offer := seedTestOffer(t, db, 10, 1000)

	cart, _ := repo.CreateOpen(userID)
	if err := repo.UpsertLine(cart.ID, offer.ID, 1, 1000); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}

	ok, err := repo.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
	if err != nil || !ok {
		t.Fatalf("open -> checked_out: ok=%v err=%v", ok, err)
	}

	if err := repo.UpsertLine(cart.ID, offer.ID, 5, 1000); !errors.Is(err, models.ErrCartNotOpen) {
		t.Errorf("upsert into frozen cart: got %v, want ErrCartNotOpen", err)
	}
	if err := repo.DeleteLine(cart.ID, offer.ID); !errors.Is(err, models.ErrCartNotOpen) {
		t.Errorf("delete in frozen cart: got %v, want ErrCartNotOpen", err)
	}
	if err := repo.DeleteLines(cart.ID); !errors.Is(err, models.ErrCartNotOpen) {
		t.Errorf("clear of frozen cart: got %v, want ErrCartNotOpen", err)
	}
	if _, err := repo.RecomputeTotal(cart.ID); !errors.Is(err, models.ErrCartNotOpen) {
		t.Errorf("recompute of frozen cart: got %v, want ErrCartNotOpen", err)
	}

	frozen, err := repo.GetByIDForUser(cart.ID, userID)
	if err != nil {
		t.Fatalf("GetByIDForUser failed: %v", err)
	}
	if frozen.TotalCents != 1000 {
		t.Errorf("frozen total = %d, want 1000", frozen.TotalCents)
	}
	if len(frozen.Lines) != 1 || frozen.Lines[0].Quantity != 1 {
		t.Errorf("frozen line set changed: %+v", frozen.Lines)
	}
}

func TestCartTransitionRefreshesTotal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)
	offer := seedTestOffer(t, db, 10, 1500)

	cart, _ := repo.CreateOpen(userID)
	if err := repo.UpsertLine(cart.ID, offer.ID, 2, 1500); err != nil {
		t.Fatalf("UpsertLine failed: %v", err)
	}

	// No explicit recompute: the freeze itself must capture the line set
	ok, err := repo.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
	if err != nil || !ok {
		t.Fatalf("open -> checked_out: ok=%v err=%v", ok, err)
	}

	frozen, err := repo.GetByIDForUser(cart.ID, userID)
	if err != nil {
		t.Fatalf("GetByIDForUser failed: %v", err)
	}
	if frozen.TotalCents != 3000 {
		t.Errorf("frozen total = %d, want 3000", frozen.TotalCents)
	}
}

func TestCartDeleteMissingLine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)

	cart, _ := repo.CreateOpen(userID)
	if err := repo.DeleteLine(cart.ID, 42); !errors.Is(err, models.ErrLineNotFound) {
		t.Errorf("got %v, want ErrLineNotFound", err)
	}
}

func TestCartTransitionStatusGuard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	userID := seedTestUser(t, db)

	cart, _ := repo.CreateOpen(userID)

	ok, err := repo.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
	if err != nil || !ok {
		t.Fatalf("open -> checked_out: ok=%v err=%v", ok, err)
	}

	// The same transition cannot apply twice
	ok, err = repo.TransitionStatus(cart.ID, models.CartOpen, models.CartCheckedOut)
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if ok {
		t.Error("stale transition should not match")
	}

	ok, err = repo.TransitionStatus(cart.ID, models.CartCheckedOut, models.CartPaid)
	if err != nil || !ok {
		t.Fatalf("checked_out -> paid: ok=%v err=%v", ok, err)
	}
}

func TestCartGetByIDForUserScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	owner := seedTestUser(t, db)
	stranger := seedTestUser(t, db)

	cart, _ := repo.CreateOpen(owner)

	if _, err := repo.GetByIDForUser(cart.ID, owner); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := repo.GetByIDForUser(cart.ID, stranger); !errors.Is(err, models.ErrCartNotFound) {
		t.Errorf("stranger lookup: got %v, want ErrCartNotFound", err)
	}
}
