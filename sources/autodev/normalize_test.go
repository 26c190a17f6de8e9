package autodev

import (
	"testing"

	"nightdrive/models"
)

func TestNormalizeRecord(t *testing.T) {
	var r record
	year := 2022
	r.Vehicle.Year = &year
	r.Vehicle.Make = "Kia"
	r.Vehicle.Model = "EV6"
	r.Vehicle.VIN = "KNDC3DLCXN5000001"
	r.RetailListing.ID = 778899
	r.RetailListing.Price = models.Float64Ptr(41200)
	r.RetailListing.Used = true
	r.RetailListing.PhotoURLs = []string{"https://cdn.example/1.jpg"}

	got := normalizeRecord(&r)

	if got.ID != "autodev-778899" {
		t.Errorf("id = %q, want autodev-778899", got.ID)
	}
	if got.Heading != "2022 Kia EV6" {
		t.Errorf("heading = %q, want 2022 Kia EV6", got.Heading)
	}
	if got.InventoryType != "used" {
		t.Errorf("inventory type = %q, want used", got.InventoryType)
	}
	if got.Source != "autodev" {
		t.Errorf("source = %q, want autodev", got.Source)
	}
}

func TestNormalizeRecordNewWhenNotUsed(t *testing.T) {
	var r record
	r.RetailListing.ID = 1

	got := normalizeRecord(&r)

	if got.InventoryType != "new" {
		t.Errorf("inventory type = %q, want new", got.InventoryType)
	}
	if got.Heading != "Vehicle" {
		t.Errorf("heading = %q, want placeholder", got.Heading)
	}
}
