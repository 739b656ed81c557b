package main

import (
	"log"
	"time"

	"games-ticketing-platform/internal/config"
	"games-ticketing-platform/internal/database"
	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	expiry := time.Now().AddDate(0, 6, 0)
	seeds := []models.OfferCreateRequest{
		{Type: models.OfferSolo, Discipline: "Athletics", Description: "Athletics 100m final, single seat", Quantity: 500, PriceCents: 8500, ExpiresAt: &expiry, Featured: true},
		{Type: models.OfferDuo, Discipline: "Athletics", Description: "Athletics 100m final, pair of seats", Quantity: 200, PriceCents: 15000, ExpiresAt: &expiry, Featured: true},
		{Type: models.OfferFamily, Discipline: "Athletics", Description: "Athletics 100m final, family of four", Quantity: 80, PriceCents: 26000, ExpiresAt: &expiry},
		{Type: models.OfferSolo, Discipline: "Swimming", Description: "Swimming finals evening session", Quantity: 400, PriceCents: 7000, ExpiresAt: &expiry},
		{Type: models.OfferDuo, Discipline: "Swimming", Description: "Swimming finals evening session for two", Quantity: 150, PriceCents: 12500, ExpiresAt: &expiry},
		{Type: models.OfferSolo, Discipline: "Gymnastics", Description: "Artistic gymnastics all-around", Quantity: 300, PriceCents: 9500, ExpiresAt: &expiry, Featured: true},
		{Type: models.OfferFamily, Discipline: "Basketball", Description: "Basketball group stage, family pack", Quantity: 120, PriceCents: 18000, ExpiresAt: &expiry},
		{Type: models.OfferSolo, Discipline: "Judo", Description: "Judo medal matches", Quantity: 250, PriceCents: 4500, ExpiresAt: &expiry},
	}

	offerRepo := repositories.NewOfferRepository(db.DB)
	for i := range seeds {
		offer, err := offerRepo.Create(&seeds[i])
		if err != nil {
			log.Fatalf("Failed to create offer %q: %v", seeds[i].Description, err)
		}
		log.Printf("Created offer %d: %s (%s, %d units)", offer.ID, offer.Description, offer.Type, offer.Quantity)
	}

	log.Printf("Seeded %d offers", len(seeds))
}
