package pipeline

import (
	"testing"

	"nightdrive/models"
)

func railListing(id, make_, model string, score, fairness float64) models.Listing {
	return models.Listing{
		ID:    id,
		Build: models.Build{Make: make_, Model: model},
		Meta:  &models.Meta{Score: score, PriceFairness: fairness},
	}
}

func byScore(l *models.Listing) float64    { return l.Meta.Score }
func byFairness(l *models.Listing) float64 { return l.Meta.PriceFairness }

func TestPickRailSortsByGivenComponent(t *testing.T) {
	pool := []models.Listing{
		railListing("a", "Toyota", "Camry", 0.9, 0.1),
		railListing("b", "Honda", "Accord", 0.5, 0.9),
		railListing("c", "Ford", "F-150", 0.7, 0.5),
	}

	got := PickRail(pool, 3, map[string]struct{}{}, byFairness)

	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPickRailsDoNotOverlap(t *testing.T) {
	pool := []models.Listing{
		railListing("a", "Toyota", "Camry", 0.9, 0.9),
		railListing("b", "Honda", "Accord", 0.8, 0.8),
		railListing("c", "Ford", "F-150", 0.7, 0.7),
		railListing("d", "Mazda", "CX-5", 0.6, 0.6),
	}

	used := map[string]struct{}{}
	first := PickRail(pool, 2, used, byScore)
	second := PickRail(pool, 2, used, byFairness)

	seen := map[string]struct{}{}
	for _, l := range append(first, second...) {
		if _, dup := seen[l.ID]; dup {
			t.Errorf("listing %s appears in both rails", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("rail sizes = %d, %d, want 2 each", len(first), len(second))
	}
}

func TestPickRailOneModelPerRail(t *testing.T) {
	pool := []models.Listing{
		railListing("c1", "Toyota", "Camry", 0.9, 0),
		railListing("c2", "Toyota", "Camry", 0.8, 0),
		railListing("a1", "Honda", "Accord", 0.7, 0),
	}

	got := PickRail(pool, 3, map[string]struct{}{}, byScore)

	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2 (second Camry excluded)", len(got))
	}
	if got[0].ID != "c1" || got[1].ID != "a1" {
		t.Errorf("rail = [%s, %s], want [c1, a1]", got[0].ID, got[1].ID)
	}
}

func TestPickRailMakeCap(t *testing.T) {
	pool := []models.Listing{
		railListing("t1", "Toyota", "Camry", 0.9, 0),
		railListing("t2", "Toyota", "Corolla", 0.8, 0),
		railListing("t3", "Toyota", "RAV4", 0.7, 0),
		railListing("h1", "Honda", "Civic", 0.6, 0),
	}

	got := PickRail(pool, 4, map[string]struct{}{}, byScore)

	toyotas := 0
	for _, l := range got {
		if l.Build.Make == "Toyota" {
			toyotas++
		}
	}
	if toyotas != 2 {
		t.Errorf("rail carries %d Toyotas, want 2", toyotas)
	}
	if len(got) != 3 {
		t.Errorf("rail size = %d, want 3", len(got))
	}
}

func TestPickRailRecordsUsedKeys(t *testing.T) {
	pool := []models.Listing{railListing("a", "Toyota", "Camry", 0.9, 0)}
	used := map[string]struct{}{}

	_ = PickRail(pool, 1, used, byScore)

	if _, ok := used["a"]; !ok {
		t.Error("picked listing key was not recorded in usedIDs")
	}
}

func TestPickRailRespectsCount(t *testing.T) {
	pool := make([]models.Listing, 0, 10)
	makes := []string{"Toyota", "Honda", "Ford", "Mazda", "Kia", "BMW", "Audi", "Volvo", "Subaru", "Lexus"}
	for i, m := range makes {
		pool = append(pool, railListing(m, m, "Model"+m, float64(10-i)/10, 0))
	}

	got := PickRail(pool, 6, map[string]struct{}{}, byScore)

	if len(got) != 6 {
		t.Errorf("rail size = %d, want 6", len(got))
	}
}
