package storage

import "nightdrive/models"

// LeadWriter is the interface any lead persistence backend must satisfy.
// kind is the capture channel: "contact" or "newsletter".
type LeadWriter interface {
	Append(kind string, lead models.Lead) error
	Close() error
}

// LeadReader exposes the stored leads for the admin surface.
type LeadReader interface {
	ReadAll(kind string) ([]models.Lead, error)
}
