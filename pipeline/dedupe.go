package pipeline

import (
	"fmt"
	"strings"

	"nightdrive/models"
)

// fuzzyKey builds the near-duplicate composite key: make|model|year|trim|dealer.
// Listings missing all of these collapse onto the same empty key, which is
// accepted behavior — nothing more specific is knowable about them.
func fuzzyKey(l *models.Listing) string {
	year := ""
	if l.Build.Year != nil {
		year = fmt.Sprintf("%d", *l.Build.Year)
	}
	return strings.Join([]string{
		strings.ToLower(l.Build.Make),
		strings.ToLower(l.Build.Model),
		year,
		strings.ToLower(l.Build.Trim),
		l.Dealer.ID,
	}, "|")
}

// Dedupe removes exact and fuzzy duplicates from a batch.
//
// Pass 1 is a strict VIN identity filter: any listing whose VIN was already
// seen is dropped outright, even if other fields differ. Pass 2 collides
// survivors on the fuzzy composite key; on collision the candidate with more
// photo links wins and replaces the retained record in place. Ties keep the
// first-seen listing.
func Dedupe(listings []models.Listing) []models.Listing {
	vinSeen := make(map[string]struct{})
	fuzzyIdx := make(map[string]int)
	result := make([]models.Listing, 0, len(listings))

	for i := range listings {
		l := listings[i]
		if l.VIN != "" {
			if _, dup := vinSeen[l.VIN]; dup {
				continue
			}
			vinSeen[l.VIN] = struct{}{}
		}

		key := fuzzyKey(&l)
		if idx, ok := fuzzyIdx[key]; ok {
			if l.PhotoCount() > result[idx].PhotoCount() {
				result[idx] = l
			}
			continue
		}
		fuzzyIdx[key] = len(result)
		result = append(result, l)
	}
	return result
}
