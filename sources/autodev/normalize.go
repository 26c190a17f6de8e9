package autodev

import (
	"fmt"

	"nightdrive/models"
)

// record is one Auto.dev listing: a vehicle block plus its retail offer.
type record struct {
	Vehicle struct {
		Year          *int   `json:"year"`
		Make          string `json:"make"`
		Model         string `json:"model"`
		Trim          string `json:"trim"`
		Engine        string `json:"engine"`
		Transmission  string `json:"transmission"`
		FuelType      string `json:"fuelType"`
		BodyStyle     string `json:"bodyStyle"`
		Drivetrain    string `json:"drivetrain"`
		VIN           string `json:"vin"`
		ExteriorColor string `json:"exteriorColor"`
	} `json:"vehicle"`
	RetailListing struct {
		ID         int64    `json:"id"`
		Price      *float64 `json:"price"`
		Miles      *float64 `json:"miles"`
		City       string   `json:"city"`
		State      string   `json:"state"`
		Zip        string   `json:"zip"`
		DealerName string   `json:"dealerName"`
		PhotoURLs  []string `json:"photoUrls"`
		Used       bool     `json:"used"`
	} `json:"retailListing"`
}

// normalizeRecord maps one Auto.dev record onto the canonical shape.
func normalizeRecord(r *record) models.Listing {
	inventoryType := "new"
	if r.RetailListing.Used {
		inventoryType = "used"
	}

	l := models.Listing{
		ID:            fmt.Sprintf("autodev-%d", r.RetailListing.ID),
		VIN:           r.Vehicle.VIN,
		Price:         r.RetailListing.Price,
		Miles:         r.RetailListing.Miles,
		InventoryType: inventoryType,
		ExteriorColor: r.Vehicle.ExteriorColor,
		Build: models.Build{
			Year:         r.Vehicle.Year,
			Make:         r.Vehicle.Make,
			Model:        r.Vehicle.Model,
			Trim:         r.Vehicle.Trim,
			FuelType:     r.Vehicle.FuelType,
			Transmission: r.Vehicle.Transmission,
			BodyType:     r.Vehicle.BodyStyle,
			Drivetrain:   r.Vehicle.Drivetrain,
			Engine:       r.Vehicle.Engine,
		},
		Media: models.Media{PhotoLinks: r.RetailListing.PhotoURLs},
		Dealer: models.Dealer{
			Name:       r.RetailListing.DealerName,
			City:       r.RetailListing.City,
			State:      r.RetailListing.State,
			Zip:        r.RetailListing.Zip,
			DealerType: "unknown",
		},
		Source: sourceName,
	}

	if l.Build.Year != nil && l.Build.Make != "" && l.Build.Model != "" {
		l.Heading = fmt.Sprintf("%d %s %s", *l.Build.Year, l.Build.Make, l.Build.Model)
	} else if l.Build.Make != "" {
		l.Heading = l.Build.Make + " " + l.Build.Model
	} else {
		l.Heading = "Vehicle"
	}
	return l
}
