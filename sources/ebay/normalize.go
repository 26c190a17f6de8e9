package ebay

import (
	"strconv"

	"nightdrive/models"
)

const maxAdditionalImages = 9

// itemSummary is the slice of a Browse item the pipeline reads. The same
// shape covers search summaries and single-item lookups.
type itemSummary struct {
	ItemID       string `json:"itemId"`
	LegacyItemID string `json:"legacyItemId"`
	Title        string `json:"title"`
	Price        struct {
		Value string `json:"value"`
	} `json:"price"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	AdditionalImages []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"additionalImages"`
	ItemLocation struct {
		City            string `json:"city"`
		StateOrProvince string `json:"stateOrProvince"`
	} `json:"itemLocation"`
	ItemWebURL string `json:"itemWebUrl"`
}

// normalizeItem maps one Browse item onto the canonical listing shape.
// eBay motors summaries carry no VIN, build, or mileage; those stay unknown
// and the scorer applies its neutral defaults.
func normalizeItem(item *itemSummary) models.Listing {
	id := item.ItemID
	if id == "" {
		id = item.LegacyItemID
	}

	var price *float64
	if item.Price.Value != "" {
		if v, err := strconv.ParseFloat(item.Price.Value, 64); err == nil {
			price = &v
		}
	}

	var photos []string
	if item.Image.ImageURL != "" {
		photos = append(photos, item.Image.ImageURL)
	}
	for i, img := range item.AdditionalImages {
		if i >= maxAdditionalImages {
			break
		}
		if img.ImageURL != "" {
			photos = append(photos, img.ImageURL)
		}
	}

	heading := item.Title
	if heading == "" {
		heading = "eBay Vehicle"
	}

	return models.Listing{
		ID:            "ebay-" + id,
		Heading:       heading,
		Price:         price,
		InventoryType: "used",
		Build:         models.Build{BodyType: "Other"},
		Media:         models.Media{PhotoLinks: photos},
		Dealer: models.Dealer{
			City:       item.ItemLocation.City,
			State:      item.ItemLocation.StateOrProvince,
			DealerType: "independent",
		},
		ItemWebURL: item.ItemWebURL,
		Source:     sourceName,
	}
}
