// Package demo is the last fallback tier: a static, guaranteed non-empty
// dataset so the storefront never renders an empty surface. It always
// succeeds.
package demo

import (
	"context"
	"time"

	"nightdrive/models"
	"nightdrive/sources"
)

const sourceName = "demo"

// Provider serves the built-in demo vehicles.
type Provider struct {
	now func() time.Time
}

// New creates the demo provider.
func New() *Provider {
	return &Provider{now: time.Now}
}

func (p *Provider) Name() string { return sourceName }

// HomeFeed returns the full demo set.
func (p *Provider) HomeFeed(ctx context.Context) (*sources.Result, error) {
	listings := p.Listings()
	return &sources.Result{Listings: listings, NumFound: len(listings)}, nil
}

// Search returns the full demo set; filters are not applied — by the time
// the cascade reaches this tier, showing something beats showing nothing.
func (p *Provider) Search(ctx context.Context, q sources.Query) (*sources.Result, error) {
	return p.HomeFeed(ctx)
}

// Get finds one demo vehicle by id.
func (p *Provider) Get(id string) (*models.Listing, bool) {
	for _, l := range p.Listings() {
		if l.ID == id {
			return &l, true
		}
	}
	return nil, false
}

type seed struct {
	id            string
	heading       string
	price         float64
	miles         float64
	inventoryType string
	year          int
	make          string
	model         string
	fuelType      string
	transmission  string
	bodyType      string
	photo         string
	city          string
	state         string
	dealerType    string
	daysListed    int
	oneOwner      bool
}

var seeds = []seed{
	{"demo-1", "2026 BMW M4 Competition", 82900, 1250, "new", 2026, "BMW", "M4 Competition", "Gasoline", "Automatic", "Coupe",
		"https://images.unsplash.com/photo-1555215695-3004980ad54e?w=640&h=400&fit=crop&auto=format&q=80", "New York", "NY", "franchise", 5, false},
	{"demo-2", "2026 Mercedes-Benz S-Class", 118300, 500, "new", 2026, "Mercedes-Benz", "S-Class", "Gasoline", "Automatic", "Sedan",
		"https://images.unsplash.com/photo-1618843479313-40f8afb4b4d8?w=640&h=400&fit=crop&auto=format&q=80", "Los Angeles", "CA", "franchise", 3, false},
	{"demo-3", "2025 Tesla Model S Plaid", 89990, 3200, "used", 2025, "Tesla", "Model S", "Electric", "Automatic", "Sedan",
		"https://images.unsplash.com/photo-1560958089-b8a1929cea89?w=640&h=400&fit=crop&auto=format&q=80", "San Francisco", "CA", "independent", 1, false},
	{"demo-4", "2025 Porsche 911 Turbo S", 216100, 2100, "certified", 2025, "Porsche", "911", "Gasoline", "Automatic", "Coupe",
		"https://images.unsplash.com/photo-1503376780353-7e6692767b70?w=640&h=400&fit=crop&auto=format&q=80", "Miami", "FL", "franchise", 14, true},
	{"demo-5", "2026 Toyota RAV4 Hybrid", 35400, 50, "new", 2026, "Toyota", "RAV4", "Hybrid", "Automatic", "SUV",
		"https://images.unsplash.com/photo-1609521263047-f8f205293f24?w=640&h=400&fit=crop&auto=format&q=80", "Chicago", "IL", "franchise", 8, false},
	{"demo-6", "2025 Ford Mustang GT", 42300, 8500, "used", 2025, "Ford", "Mustang", "Gasoline", "Manual", "Coupe",
		"https://images.unsplash.com/photo-1494976388531-d1058494cdd8?w=640&h=400&fit=crop&auto=format&q=80", "Dallas", "TX", "independent", 20, false},
}

// Listings materializes the demo vehicles with listing ages anchored to now,
// so the scorer's freshness output stays stable across restarts.
func (p *Provider) Listings() []models.Listing {
	now := p.now().Unix()
	out := make([]models.Listing, 0, len(seeds))
	for _, s := range seeds {
		year := s.year
		price := s.price
		miles := s.miles
		out = append(out, models.Listing{
			ID:            s.id,
			VIN:           "DEMO" + s.id[len(s.id)-1:] + "0000000000000",
			Heading:       s.heading,
			Price:         &price,
			Miles:         &miles,
			InventoryType: s.inventoryType,
			Build: models.Build{
				Year:         &year,
				Make:         s.make,
				Model:        s.model,
				FuelType:     s.fuelType,
				Transmission: s.transmission,
				BodyType:     s.bodyType,
			},
			Media: models.Media{PhotoLinks: []string{s.photo}},
			Dealer: models.Dealer{
				ID:         "demo-dealer-" + s.state,
				City:       s.city,
				State:      s.state,
				DealerType: s.dealerType,
			},
			FirstSeenAt: now - int64(s.daysListed)*86400,
			OneOwner:    s.oneOwner,
			Source:      sourceName,
		})
	}
	return out
}
