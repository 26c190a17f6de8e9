// Package feed is the source orchestrator: it owns the fallback cascade
// across upstream providers, the stale-while-revalidate response cache, and
// the featured-placement overlay, and drives the listing pipeline to build
// storefront responses.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"nightdrive/models"
	"nightdrive/pipeline"
	"nightdrive/sources"
	"nightdrive/sources/autodev"
	"nightdrive/sources/demo"
	"nightdrive/sources/ebay"
	"nightdrive/sources/marketcheck"
	"nightdrive/storage"
	"nightdrive/utils"
)

const (
	railSize        = 6
	defaultPageSize = 12
	minUpstreamRows = 50
)

// Rails is the curated home-feed grouping: up to six scored listings each.
type Rails struct {
	EditorPicks []models.Listing `json:"editorPicks"`
	BestDeals   []models.Listing `json:"bestDeals"`
	LowMileage  []models.Listing `json:"lowMileage"`
	JustArrived []models.Listing `json:"justArrived"`
}

// HomeFeedResponse is the home-feed payload.
type HomeFeedResponse struct {
	Rails          Rails  `json:"rails"`
	TotalAvailable int    `json:"totalAvailable"`
	Source         string `json:"source"`
}

// InventoryResponse is the search payload.
type InventoryResponse struct {
	NumFound int              `json:"num_found"`
	Listings []models.Listing `json:"listings"`
	Source   string           `json:"source"`
}

// FacetsResponse is the filter-facet payload.
type FacetsResponse struct {
	Facets   json.RawMessage `json:"facets"`
	NumFound int             `json:"num_found"`
}

// Service orchestrates providers in fallback order. The demo provider sits
// last and always succeeds, so callers never see an empty surface.
type Service struct {
	providers []sources.Provider
	primary   *marketcheck.Client
	ebayAPI   *ebay.Client
	demoSet   *demo.Provider
	featured  *storage.FeaturedStore
	cache     *Cache
	logger    *utils.Logger

	revalidateBudget time.Duration
}

// New wires the orchestrator. Unconfigured optional providers are excluded
// from the cascade; demo is always appended last.
func New(primary *marketcheck.Client, ebayAPI *ebay.Client, autodevAPI *autodev.Client, featured *storage.FeaturedStore, cache *Cache, logger *utils.Logger) *Service {
	s := &Service{
		primary:          primary,
		ebayAPI:          ebayAPI,
		demoSet:          demo.New(),
		featured:         featured,
		cache:            cache,
		logger:           logger,
		revalidateBudget: 30 * time.Second,
	}
	if primary != nil && primary.Configured() {
		s.providers = append(s.providers, primary)
	}
	if ebayAPI != nil && ebayAPI.Configured() {
		s.providers = append(s.providers, ebayAPI)
	}
	if autodevAPI != nil && autodevAPI.Configured() {
		s.providers = append(s.providers, autodevAPI)
	}
	s.providers = append(s.providers, s.demoSet)
	return s
}

// CacheLen reports live cache entries, for health reporting.
func (s *Service) CacheLen() int { return s.cache.Len() }

// Probe checks the primary provider for readiness. With no primary
// configured there is nothing to probe and the check passes.
func (s *Service) Probe(ctx context.Context) error {
	if s.primary == nil || !s.primary.Configured() {
		return nil
	}
	return s.primary.Probe(ctx)
}

// fallthroughFetch walks the cascade, treating an error or an empty batch
// identically: log and advance a tier. The demo tier guarantees a result.
func (s *Service) fallthroughFetch(ctx context.Context, fetch func(sources.Provider) (*sources.Result, error)) (*sources.Result, string) {
	for _, p := range s.providers {
		res, err := fetch(p)
		if err != nil {
			s.logger.Warn("[feed] source %s failed: %v — trying next tier", p.Name(), err)
			continue
		}
		if res == nil || len(res.Listings) == 0 {
			s.logger.Warn("[feed] source %s returned no listings — trying next tier", p.Name())
			continue
		}
		return res, p.Name()
	}
	// Unreachable in practice: the demo tier never fails nor comes up empty.
	res, _ := s.demoSet.HomeFeed(ctx)
	return res, s.demoSet.Name()
}

// applyFeatured flags listings with a live paid placement. The placement
// file is re-read on every invocation so admin changes apply immediately.
func (s *Service) applyFeatured(listings []models.Listing) []models.Listing {
	active := s.featured.ActiveIDs(time.Now())
	if len(active) == 0 {
		return listings
	}
	out := make([]models.Listing, len(listings))
	copy(out, listings)
	for i := range out {
		if _, ok := active[out[i].Key()]; ok {
			out[i].Featured = true
		}
	}
	return out
}

// HomeFeed returns the four curated rails, serving the SWR cache when it
// can. A stale hit answers immediately and refreshes in the background.
func (s *Service) HomeFeed(ctx context.Context) (*HomeFeedResponse, error) {
	const key = "home-feed"
	if cached, state := s.cache.Get(key); state != CacheMiss {
		resp := cached.(*HomeFeedResponse)
		if state == CacheStale {
			go s.revalidate(key, func(ctx context.Context) (any, error) {
				r, err := s.buildHomeFeed(ctx)
				return r, err
			})
		}
		return resp, nil
	}

	resp, err := s.buildHomeFeed(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, resp)
	return resp, nil
}

func (s *Service) buildHomeFeed(ctx context.Context) (*HomeFeedResponse, error) {
	result, source := s.fallthroughFetch(ctx, func(p sources.Provider) (*sources.Result, error) {
		return p.HomeFeed(ctx)
	})

	raw := s.applyFeatured(result.Listings)
	processed := pipeline.Process(raw, pipeline.Options{Rank: true, BlockSize: pipeline.DefaultBlockSize})

	usedIDs := make(map[string]struct{})
	rails := Rails{
		EditorPicks: pipeline.PickRail(processed, railSize, usedIDs, func(l *models.Listing) float64 { return l.Meta.Score }),
		BestDeals:   pipeline.PickRail(processed, railSize, usedIDs, func(l *models.Listing) float64 { return l.Meta.PriceFairness }),
		LowMileage:  pipeline.PickRail(processed, railSize, usedIDs, func(l *models.Listing) float64 { return l.Meta.MileageValue }),
		JustArrived: pipeline.PickRail(processed, railSize, usedIDs, func(l *models.Listing) float64 { return l.Meta.Freshness }),
	}

	return &HomeFeedResponse{
		Rails:          rails,
		TotalAvailable: result.NumFound,
		Source:         source,
	}, nil
}

// invCacheValue is what the inventory cache stores: the raw upstream batch.
// Featured overlay and diversification run per request on top of it so
// placement changes do not wait out the cache TTL.
type invCacheValue struct {
	result sources.Result
	source string
}

// Inventory answers a search request. q.Rows/q.Start must already be
// clamped by the caller.
func (s *Service) Inventory(ctx context.Context, q sources.Query) (*InventoryResponse, error) {
	rows := q.Rows
	if rows <= 0 {
		rows = defaultPageSize
	}

	// Over-fetch so diversification still has enough to choose from.
	fetchQ := q
	if fetchQ.Rows < minUpstreamRows {
		fetchQ.Rows = minUpstreamRows
	}

	key := inventoryCacheKey(fetchQ)
	var value *invCacheValue
	if cached, state := s.cache.Get(key); state != CacheMiss {
		value = cached.(*invCacheValue)
		if state == CacheStale {
			go s.revalidate(key, func(ctx context.Context) (any, error) {
				return s.fetchInventory(ctx, fetchQ), nil
			})
		}
	} else {
		value = s.fetchInventory(ctx, fetchQ)
		s.cache.Set(key, value)
	}

	raw := s.applyFeatured(value.result.Listings)

	maxPerModel := 3
	if q.Make != "" {
		maxPerModel = 6
	}
	processed := pipeline.Process(raw, pipeline.Options{Rank: false, MaxPerModel: maxPerModel})
	if len(processed) < rows {
		processed = pipeline.Process(raw, pipeline.Options{Rank: false, MaxPerModel: len(raw) + 1})
	}
	if len(processed) > rows {
		processed = processed[:rows]
	}

	return &InventoryResponse{
		NumFound: value.result.NumFound,
		Listings: processed,
		Source:   value.source,
	}, nil
}

func (s *Service) fetchInventory(ctx context.Context, q sources.Query) *invCacheValue {
	result, source := s.fallthroughFetch(ctx, func(p sources.Provider) (*sources.Result, error) {
		return p.Search(ctx, q)
	})
	return &invCacheValue{result: *result, source: source}
}

// Listing resolves one enriched listing by source-qualified id.
func (s *Service) Listing(ctx context.Context, id string) (*models.Listing, error) {
	key := "listing-" + id
	if cached, state := s.cache.Get(key); state != CacheMiss {
		l := cached.(*models.Listing)
		if state == CacheStale {
			go s.revalidate(key, func(ctx context.Context) (any, error) {
				return s.fetchListing(ctx, id)
			})
		}
		return l, nil
	}

	l, err := s.fetchListing(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, l)
	return l, nil
}

func (s *Service) fetchListing(ctx context.Context, id string) (*models.Listing, error) {
	var raw *models.Listing
	switch {
	case len(id) > 5 && id[:5] == "ebay-":
		if s.ebayAPI == nil || !s.ebayAPI.Configured() {
			return nil, fmt.Errorf("ebay not configured")
		}
		item, err := s.ebayAPI.GetItem(ctx, id[5:])
		if err != nil {
			return nil, fmt.Errorf("ebay item not found: %w", err)
		}
		raw = item
	case len(id) > 5 && id[:5] == "demo-":
		l, ok := s.demoSet.Get(id)
		if !ok {
			return nil, fmt.Errorf("listing %s not found", id)
		}
		raw = l
	default:
		if s.primary == nil || !s.primary.Configured() {
			return nil, fmt.Errorf("no primary source configured")
		}
		l, err := s.primary.GetListing(ctx, id)
		if err != nil {
			return nil, err
		}
		raw = l
	}

	// A single-element batch scores against itself; peer medians collapse to
	// the listing's own price, which is the best context available.
	enriched := pipeline.Score([]models.Listing{*raw})
	return &enriched[0], nil
}

// Facets proxies the primary provider's facet query. There is no fallback
// tier: filters come from live data or not at all.
func (s *Service) Facets(ctx context.Context, fields string) (*FacetsResponse, error) {
	key := "facets:" + fields
	if cached, state := s.cache.Get(key); state != CacheMiss {
		return cached.(*FacetsResponse), nil
	}
	if s.primary == nil || !s.primary.Configured() {
		return nil, fmt.Errorf("no primary source configured")
	}
	facets, numFound, err := s.primary.Facets(ctx, fields)
	if err != nil {
		return nil, err
	}
	resp := &FacetsResponse{Facets: facets, NumFound: numFound}
	s.cache.Set(key, resp)
	return resp, nil
}

// revalidate refreshes one cache key in the background. Failures are logged
// and never surface to the caller that triggered them.
func (s *Service) revalidate(key string, build func(context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.revalidateBudget)
	defer cancel()
	fresh, err := build(ctx)
	if err != nil {
		s.logger.Error("[feed] revalidation of %q failed: %v", key, err)
		return
	}
	s.cache.Set(key, fresh)
}

// inventoryCacheKey canonicalizes a query into a stable cache key.
func inventoryCacheKey(q sources.Query) string {
	parts := []string{
		fmt.Sprintf("rows=%d", q.Rows),
		fmt.Sprintf("start=%d", q.Start),
	}
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("make", q.Make)
	add("model", q.Model)
	add("year", q.Year)
	add("year_range", q.YearRange)
	add("price_range", q.PriceRange)
	add("body_type", q.BodyType)
	add("car_type", q.CarType)
	add("fuel_type", q.FuelType)
	add("transmission", q.Transmission)
	add("miles_range", q.MilesRange)
	add("sort_by", q.SortBy)
	add("sort_order", q.SortOrder)
	add("zip", q.Zip)
	add("radius", q.Radius)
	sort.Strings(parts)
	return "inv:" + fmt.Sprint(parts)
}
