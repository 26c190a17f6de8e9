package pipeline

import (
	"sort"
	"strings"

	"nightdrive/models"
)

// DefaultBlockSize is the rolling-window size used by RankAndDiversify when
// callers pass 0.
const DefaultBlockSize = 8

const (
	maxModelPerBlock = 2
	maxPerDealer     = 3
)

func modelKey(l *models.Listing) string {
	return strings.ToLower(l.Build.Make + "|" + l.Build.Model)
}

// RankAndDiversify orders listings by descending score and enforces variety:
// at most two of the same (make, model) inside a rolling block, at most three
// listings per dealer overall. The block resets once full; the dealer counter
// does not. A final interleaving pass reorders the survivors so no two
// adjacent listings share a model key. When one model dominates the pool the
// leftover same-key listings are appended at the end instead of being dropped,
// so the adjacency guarantee can lapse at the very tail.
func RankAndDiversify(listings []models.Listing, blockSize int) []models.Listing {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	sorted := make([]models.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metaScore(&sorted[i]) > metaScore(&sorted[j])
	})

	result := make([]models.Listing, 0, len(sorted))
	dealerCount := make(map[string]int)
	blockModels := make(map[string]int)
	blockLen := 0

	for i := range sorted {
		l := sorted[i]
		mk := modelKey(&l)
		if blockModels[mk] >= maxModelPerBlock {
			continue
		}
		if dealerCount[l.Dealer.ID] >= maxPerDealer {
			continue
		}

		result = append(result, l)
		blockModels[mk]++
		dealerCount[l.Dealer.ID]++
		blockLen++

		if blockLen >= blockSize {
			blockModels = make(map[string]int)
			blockLen = 0
		}
	}

	return interleave(result)
}

// interleave greedily reorders listings so adjacent entries never share a
// model key, always drawing from the largest remaining bucket that differs
// from the previous pick. Overflow from a dominating bucket goes to the tail.
func interleave(listings []models.Listing) []models.Listing {
	if len(listings) < 2 {
		return listings
	}

	type bucket struct {
		key   string
		items []models.Listing
	}
	var buckets []*bucket
	index := make(map[string]*bucket)
	for i := range listings {
		k := modelKey(&listings[i])
		b, ok := index[k]
		if !ok {
			b = &bucket{key: k}
			index[k] = b
			buckets = append(buckets, b)
		}
		b.items = append(b.items, listings[i])
	}

	out := make([]models.Listing, 0, len(listings))
	prev := ""
	for len(out) < len(listings) {
		var pick *bucket
		for _, b := range buckets {
			if len(b.items) == 0 || b.key == prev {
				continue
			}
			if pick == nil || len(b.items) > len(pick.items) {
				pick = b
			}
		}
		if pick == nil {
			// Only the previous model remains; append the overflow as-is.
			for _, b := range buckets {
				out = append(out, b.items...)
			}
			break
		}
		out = append(out, pick.items[0])
		pick.items = pick.items[1:]
		prev = pick.key
	}
	return out
}

// LightDiversify caps the number of listings per (make, model) without
// reordering. Used for search results, where upstream sort order is the
// contract and only model monotony needs trimming.
func LightDiversify(listings []models.Listing, maxPerModel int) []models.Listing {
	if maxPerModel <= 0 {
		maxPerModel = 3
	}
	counts := make(map[string]int)
	out := make([]models.Listing, 0, len(listings))
	for i := range listings {
		k := modelKey(&listings[i])
		counts[k]++
		if counts[k] <= maxPerModel {
			out = append(out, listings[i])
		}
	}
	return out
}

func metaScore(l *models.Listing) float64 {
	if l.Meta == nil {
		return 0
	}
	return l.Meta.Score
}
