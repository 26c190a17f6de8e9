// Package sources defines the upstream provider contract and shared HTTP
// plumbing. Each provider lives in its own sub-package and normalizes its
// raw records into the canonical models.Listing shape — pipeline stages
// never branch on source-specific field presence.
package sources

import (
	"context"

	"nightdrive/models"
)

// Query carries inventory search parameters after clamping. String fields
// are passed through to providers that understand them and ignored by the
// rest.
type Query struct {
	Rows  int
	Start int

	Make         string
	Model        string
	Year         string
	YearRange    string
	PriceRange   string
	BodyType     string
	CarType      string
	FuelType     string
	Transmission string
	MilesRange   string
	SortBy       string
	SortOrder    string
	Zip          string
	Radius       string
}

// Result is one successful provider fetch. NumFound is the upstream total
// for the query, not the batch length.
type Result struct {
	Listings []models.Listing
	NumFound int
}

// Provider is one upstream listings source. A nil-error Result with zero
// listings is a degenerate result; the orchestrator treats it exactly like
// an error and advances to the next fallback tier.
type Provider interface {
	Name() string
	HomeFeed(ctx context.Context) (*Result, error)
	Search(ctx context.Context, q Query) (*Result, error)
}
