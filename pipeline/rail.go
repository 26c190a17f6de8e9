package pipeline

import (
	"sort"
	"strings"

	"nightdrive/models"
)

const maxPerMakePerRail = 2

// ScoreFunc ranks candidates for a rail. Different rails sort the same pool
// by different meta components (score, priceFairness, mileageValue, ...).
type ScoreFunc func(l *models.Listing) float64

// PickRail selects up to count listings from pool, skipping ids already in
// usedIDs so rails drawn from one pool never overlap. Within a rail no two
// listings share a (make, model) key and no make contributes more than two.
// Chosen listing keys are added to usedIDs as a side effect.
func PickRail(pool []models.Listing, count int, usedIDs map[string]struct{}, scoreFn ScoreFunc) []models.Listing {
	candidates := make([]models.Listing, 0, len(pool))
	for i := range pool {
		if _, used := usedIDs[pool[i].Key()]; used {
			continue
		}
		candidates = append(candidates, pool[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scoreFn(&candidates[i]) > scoreFn(&candidates[j])
	})

	result := make([]models.Listing, 0, count)
	makeCount := make(map[string]int)
	modelSeen := make(map[string]struct{})

	for i := range candidates {
		if len(result) >= count {
			break
		}
		l := candidates[i]
		make_ := strings.ToLower(l.Build.Make)
		mk := make_ + "|" + strings.ToLower(l.Build.Model)

		if _, seen := modelSeen[mk]; seen {
			continue
		}
		if makeCount[make_] >= maxPerMakePerRail {
			continue
		}

		result = append(result, l)
		usedIDs[l.Key()] = struct{}{}
		modelSeen[mk] = struct{}{}
		makeCount[make_]++
	}
	return result
}
