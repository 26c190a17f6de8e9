package models

import "time"

// Lead is one captured contact or newsletter submission, persisted as an
// NDJSON line and optionally mirrored to Postgres.
type Lead struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Vehicle string `json:"vehicle,omitempty"`
	Source  string `json:"source,omitempty"`
	IP      string `json:"ip,omitempty"`
	TS      string `json:"_ts,omitempty"`
}

// FeaturedPlacement is a paid boost for a specific listing id. A zero Expires
// means the placement never lapses; an Expires in the past makes it inert.
type FeaturedPlacement struct {
	ListingID string `json:"listingId"`
	DealerID  string `json:"dealerId,omitempty"`
	Priority  int    `json:"priority"`
	Expires   int64  `json:"expires,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Active reports whether the placement should boost listings at the given time.
func (p FeaturedPlacement) Active(now time.Time) bool {
	return p.Expires == 0 || p.Expires > now.UnixMilli()
}
