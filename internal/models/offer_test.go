package models

import (
	"testing"
	"time"
)

func TestOfferTypeCapacity(t *testing.T) {
	tests := []struct {
		offerType OfferType
		want      int
	}{
		{OfferSolo, 1},
		{OfferDuo, 2},
		{OfferFamily, 4},
		{OfferType("unknown"), 0},
	}

	for _, tt := range tests {
		if got := tt.offerType.Capacity(); got != tt.want {
			t.Errorf("Capacity(%q) = %d, want %d", tt.offerType, got, tt.want)
		}
	}
}

func TestOfferCreateRequestValidate(t *testing.T) {
	valid := OfferCreateRequest{
		Type:        OfferSolo,
		Discipline:  "Athletics",
		Description: "100m final",
		Quantity:    100,
		PriceCents:  8500,
	}

	tests := []struct {
		name    string
		mutate  func(*OfferCreateRequest)
		wantErr bool
	}{
		{"valid", func(r *OfferCreateRequest) {}, false},
		{"zero quantity allowed", func(r *OfferCreateRequest) { r.Quantity = 0 }, false},
		{"invalid type", func(r *OfferCreateRequest) { r.Type = "trio" }, true},
		{"empty discipline", func(r *OfferCreateRequest) { r.Discipline = "" }, true},
		{"negative quantity", func(r *OfferCreateRequest) { r.Quantity = -1 }, true},
		{"zero price", func(r *OfferCreateRequest) { r.PriceCents = 0 }, true},
		{"negative price", func(r *OfferCreateRequest) { r.PriceCents = -100 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOfferIsPurchasable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		offer Offer
		want  bool
	}{
		{"available with stock", Offer{Status: OfferAvailable, Quantity: 5}, true},
		{"available no expiry", Offer{Status: OfferAvailable, Quantity: 1, ExpiresAt: nil}, true},
		{"available future expiry", Offer{Status: OfferAvailable, Quantity: 1, ExpiresAt: &future}, true},
		{"expired by date", Offer{Status: OfferAvailable, Quantity: 5, ExpiresAt: &past}, false},
		{"sold out", Offer{Status: OfferSoldOut, Quantity: 0}, false},
		{"withdrawn", Offer{Status: OfferWithdrawn, Quantity: 5}, false},
		{"expired status", Offer{Status: OfferExpired, Quantity: 5}, false},
		{"available zero stock", Offer{Status: OfferAvailable, Quantity: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.offer.IsPurchasable(now); got != tt.want {
				t.Errorf("IsPurchasable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOfferPriceInCurrency(t *testing.T) {
	offer := Offer{PriceCents: 8550}
	if got := offer.PriceInCurrency(); got != 85.50 {
		t.Errorf("PriceInCurrency() = %v, want 85.50", got)
	}
}
