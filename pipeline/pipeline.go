// Package pipeline implements the listing processing core: deduplication,
// market-context scoring, rank-and-diversify ordering, and rail picking.
// Every stage is a pure function over a batch — no stage mutates its input
// and none performs I/O.
package pipeline

import "nightdrive/models"

// Options tunes Process. Rank selects the heavy rank-and-diversify path;
// otherwise the batch keeps upstream order and only gets lightly diversified.
type Options struct {
	Rank        bool
	BlockSize   int
	MaxPerModel int
}

// Process runs the full pipeline over a raw batch:
// dedupe → score → rank-and-diversify (or light diversify).
func Process(listings []models.Listing, opts Options) []models.Listing {
	result := Dedupe(listings)
	result = Score(result)
	if opts.Rank {
		return RankAndDiversify(result, opts.BlockSize)
	}
	return LightDiversify(result, opts.MaxPerModel)
}
