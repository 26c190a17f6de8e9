package marketcheck

import (
	"encoding/json"
	"fmt"
	"strings"

	"nightdrive/models"
)

// rawRecord mirrors the fields the pipeline reads from a MarketCheck listing.
// Numeric identifiers arrive as JSON numbers, so they go through json.Number.
type rawRecord struct {
	ID            string   `json:"id"`
	VIN           string   `json:"vin"`
	Heading       string   `json:"heading"`
	Price         *float64 `json:"price"`
	MSRP          *float64 `json:"msrp"`
	Miles         *float64 `json:"miles"`
	InventoryType string   `json:"inventory_type"`
	ExteriorColor string   `json:"exterior_color"`

	// Top-level spec fields, used when the build block is missing them.
	Year  *int   `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`

	Build struct {
		Year         *int   `json:"year"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		Trim         string `json:"trim"`
		FuelType     string `json:"fuel_type"`
		Transmission string `json:"transmission"`
		BodyType     string `json:"body_type"`
		Drivetrain   string `json:"drivetrain"`
		Engine       string `json:"engine"`
		Doors        *int   `json:"doors"`
	} `json:"build"`

	Media struct {
		PhotoLinks []string `json:"photo_links"`
	} `json:"media"`

	Dealer struct {
		ID         json.Number `json:"id"`
		Name       string      `json:"name"`
		City       string      `json:"city"`
		State      string      `json:"state"`
		Zip        string      `json:"zip"`
		DealerType string      `json:"dealer_type"`
	} `json:"dealer"`

	FirstSeenAt int64 `json:"first_seen_at"`
	OneOwner    bool  `json:"carfax_1_owner"`
	CleanTitle  bool  `json:"carfax_clean_title"`
}

// normalize maps one MarketCheck record into the canonical shape. Missing
// fields become zero values, never an error.
func normalize(r *rawRecord) models.Listing {
	l := models.Listing{
		ID:            r.ID,
		VIN:           r.VIN,
		Price:         r.Price,
		MSRP:          r.MSRP,
		Miles:         r.Miles,
		InventoryType: r.InventoryType,
		ExteriorColor: r.ExteriorColor,
		Build: models.Build{
			Year:         r.Build.Year,
			Make:         r.Build.Make,
			Model:        r.Build.Model,
			Trim:         r.Build.Trim,
			FuelType:     r.Build.FuelType,
			Transmission: r.Build.Transmission,
			BodyType:     r.Build.BodyType,
			Drivetrain:   r.Build.Drivetrain,
			Engine:       r.Build.Engine,
			Doors:        r.Build.Doors,
		},
		Media: models.Media{PhotoLinks: r.Media.PhotoLinks},
		Dealer: models.Dealer{
			ID:         r.Dealer.ID.String(),
			Name:       r.Dealer.Name,
			City:       r.Dealer.City,
			State:      r.Dealer.State,
			Zip:        r.Dealer.Zip,
			DealerType: r.Dealer.DealerType,
		},
		FirstSeenAt: r.FirstSeenAt,
		OneOwner:    r.OneOwner,
		CleanTitle:  r.CleanTitle,
		Source:      sourceName,
	}

	// Top-level spec fields fill gaps in the build block.
	if l.Build.Year == nil {
		l.Build.Year = r.Year
	}
	if l.Build.Make == "" {
		l.Build.Make = r.Make
	}
	if l.Build.Model == "" {
		l.Build.Model = r.Model
	}

	l.Heading = headingFor(r.Heading, &l.Build)
	return l
}

// headingFor resolves the display title: source heading, then a synthesized
// "{year} {make} {model}", then a literal placeholder.
func headingFor(heading string, b *models.Build) string {
	if strings.TrimSpace(heading) != "" {
		return heading
	}
	parts := []string{}
	if b.Year != nil {
		parts = append(parts, fmt.Sprintf("%d", *b.Year))
	}
	if b.Make != "" {
		parts = append(parts, b.Make)
	}
	if b.Model != "" {
		parts = append(parts, b.Model)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return "Vehicle"
}
