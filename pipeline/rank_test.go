package pipeline

import (
	"testing"

	"nightdrive/models"
)

func rankedListing(id, make_, model, dealerID string, score float64) models.Listing {
	return models.Listing{
		ID:     id,
		Build:  models.Build{Make: make_, Model: model},
		Dealer: models.Dealer{ID: dealerID},
		Meta:   &models.Meta{Score: score},
	}
}

func TestRankAndDiversifyOrdersByScore(t *testing.T) {
	in := []models.Listing{
		rankedListing("low", "Honda", "Civic", "d1", 0.3),
		rankedListing("high", "Toyota", "Camry", "d2", 0.9),
		rankedListing("mid", "Ford", "F-150", "d3", 0.6),
	}

	got := RankAndDiversify(in, 0)

	wantOrder := []string{"high", "mid", "low"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRankAndDiversifyNoAdjacentSameModel(t *testing.T) {
	in := []models.Listing{
		rankedListing("c1", "Toyota", "Camry", "d1", 0.9),
		rankedListing("c2", "Toyota", "Camry", "d2", 0.8),
		rankedListing("a1", "Honda", "Accord", "d3", 0.7),
		rankedListing("a2", "Honda", "Accord", "d4", 0.6),
		rankedListing("f1", "Ford", "F-150", "d5", 0.5),
	}

	got := RankAndDiversify(in, 0)

	if len(got) != 5 {
		t.Fatalf("got %d listings, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if modelKey(&got[i]) == modelKey(&got[i-1]) {
			t.Errorf("positions %d and %d share model %s", i-1, i, modelKey(&got[i]))
		}
	}
}

func TestRankAndDiversifyDominantModelOverflowsAtTail(t *testing.T) {
	// One spacer cannot separate three Camrys; overflow lands at the end
	// rather than being dropped.
	in := []models.Listing{
		rankedListing("c1", "Toyota", "Camry", "d1", 0.9),
		rankedListing("c2", "Toyota", "Camry", "d2", 0.8),
		rankedListing("a1", "Honda", "Accord", "d3", 0.7),
	}

	got := RankAndDiversify(in, 3)

	if len(got) != 3 {
		t.Fatalf("got %d listings, want 3 (nothing dropped)", len(got))
	}
	wantOrder := []string{"c1", "a1", "c2"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRankAndDiversifyBlockCapsSameModel(t *testing.T) {
	// Four same-model listings with a block size of 8: only two survive the
	// rolling window.
	in := []models.Listing{
		rankedListing("c1", "Toyota", "Camry", "d1", 0.9),
		rankedListing("c2", "Toyota", "Camry", "d2", 0.8),
		rankedListing("c3", "Toyota", "Camry", "d3", 0.7),
		rankedListing("c4", "Toyota", "Camry", "d4", 0.6),
	}

	got := RankAndDiversify(in, 8)

	if len(got) != 2 {
		t.Errorf("got %d listings, want 2 (block cap)", len(got))
	}
}

func TestRankAndDiversifyDealerCapIsGlobal(t *testing.T) {
	in := []models.Listing{
		rankedListing("x1", "Toyota", "Camry", "mega", 0.9),
		rankedListing("x2", "Honda", "Accord", "mega", 0.8),
		rankedListing("x3", "Ford", "F-150", "mega", 0.7),
		rankedListing("x4", "Mazda", "CX-5", "mega", 0.6),
		rankedListing("x5", "Kia", "EV6", "other", 0.5),
	}

	got := RankAndDiversify(in, 2)

	megaCount := 0
	for _, l := range got {
		if l.Dealer.ID == "mega" {
			megaCount++
		}
	}
	if megaCount != 3 {
		t.Errorf("mega dealer placed %d listings, want 3 (cap does not reset per block)", megaCount)
	}
	if len(got) != 4 {
		t.Errorf("got %d listings, want 4", len(got))
	}
}

func TestLightDiversifyCapsWithoutReordering(t *testing.T) {
	in := []models.Listing{
		rankedListing("c1", "Toyota", "Camry", "d1", 0.1),
		rankedListing("c2", "Toyota", "Camry", "d2", 0.2),
		rankedListing("a1", "Honda", "Accord", "d3", 0.3),
		rankedListing("c3", "Toyota", "Camry", "d4", 0.4),
		rankedListing("c4", "Toyota", "Camry", "d5", 0.5),
	}

	got := LightDiversify(in, 2)

	wantOrder := []string{"c1", "c2", "a1"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d listings, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s (upstream order preserved)", i, got[i].ID, id)
		}
	}
}

func TestLightDiversifyZeroUsesDefault(t *testing.T) {
	in := make([]models.Listing, 0, 5)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		in = append(in, rankedListing(id, "Toyota", "Camry", "d", 0.5))
	}

	got := LightDiversify(in, 0)

	if len(got) != 3 {
		t.Errorf("got %d listings, want 3 (default cap)", len(got))
	}
}
