package models

// Build holds the vehicle specification nested under a Listing. Any field may
// be missing upstream; zero values mean "unknown".
type Build struct {
	Year         *int   `json:"year"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Trim         string `json:"trim,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	BodyType     string `json:"body_type,omitempty"`
	Drivetrain   string `json:"drivetrain,omitempty"`
	Engine       string `json:"engine,omitempty"`
	Doors        *int   `json:"doors,omitempty"`
}

// Media holds listing imagery. PhotoLinks order is display priority,
// first entry is the primary photo.
type Media struct {
	PhotoLinks []string `json:"photo_links"`
}

// Dealer identifies the selling dealership.
type Dealer struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
	DealerType string `json:"dealer_type,omitempty"`
}

// Meta is the derived scoring block. It is computed by the pipeline scorer
// and never supplied by a source.
type Meta struct {
	Score          float64  `json:"score"`
	Variant        string   `json:"variant,omitempty"`
	DealBadge      string   `json:"dealBadge,omitempty"`
	PriceFairness  float64  `json:"priceFairness"`
	Freshness      float64  `json:"freshness"`
	MileageValue   float64  `json:"mileageValue"`
	PhotoQuality   float64  `json:"photoQuality"`
	DealerQuality  float64  `json:"dealerQuality"`
	DaysSinceFirst int      `json:"daysSinceFirst"`
	MedianPrice    *float64 `json:"medianPrice"`
	TrustSignals   []string `json:"trustSignals"`
	Featured       bool     `json:"featured"`
}

// Listing is the canonical record for one vehicle offer, shared by every
// source after normalization. Nullable upstream fields are pointers.
type Listing struct {
	ID            string   `json:"id"`
	VIN           string   `json:"vin,omitempty"`
	Heading       string   `json:"heading"`
	Price         *float64 `json:"price"`
	MSRP          *float64 `json:"msrp,omitempty"`
	Miles         *float64 `json:"miles"`
	InventoryType string   `json:"inventory_type,omitempty"`
	ExteriorColor string   `json:"exterior_color,omitempty"`
	Build         Build    `json:"build"`
	Media         Media    `json:"media"`
	Dealer        Dealer   `json:"dealer"`
	FirstSeenAt   int64    `json:"first_seen_at,omitempty"`
	OneOwner      bool     `json:"carfax_1_owner,omitempty"`
	CleanTitle    bool     `json:"carfax_clean_title,omitempty"`
	ItemWebURL    string   `json:"itemWebUrl,omitempty"`

	Source   string `json:"_source,omitempty"`
	Featured bool   `json:"_featured,omitempty"`
	Meta     *Meta  `json:"_meta,omitempty"`
}

// Key returns the identity used for featured overlays and cross-rail
// exclusivity: the listing id, falling back to the VIN.
func (l *Listing) Key() string {
	if l.ID != "" {
		return l.ID
	}
	return l.VIN
}

// PhotoCount returns the number of photo links, tolerating empty media.
func (l *Listing) PhotoCount() int {
	return len(l.Media.PhotoLinks)
}

// HasPrice reports whether the listing carries a usable (positive) price.
func (l *Listing) HasPrice() bool {
	return l.Price != nil && *l.Price > 0
}

// Float64Ptr is a literal helper for nullable numeric fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr is a literal helper for nullable integer fields.
func IntPtr(v int) *int { return &v }
