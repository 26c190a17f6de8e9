// Package marketcheck is the primary listings provider: the MarketCheck
// /v2/search/car/active and /v2/listing/car APIs.
package marketcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"nightdrive/models"
	"nightdrive/sources"
	"nightdrive/utils"
)

const (
	defaultBaseURL = "https://api.marketcheck.com/v2"
	sourceName     = "marketcheck"
)

// Client calls the MarketCheck API with retry and a per-call timeout.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// New creates a ready-to-use MarketCheck client.
func New(apiKey string, httpClient *http.Client, retry *utils.RetryConfig, logger *utils.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    httpClient,
		retry:   retry,
		logger:  logger,
	}
}

// SetBaseURL overrides the API host, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) Name() string { return sourceName }

// searchResponse is the subset of the search payload the pipeline reads.
// A body carrying error/message without listings is treated as failure.
type searchResponse struct {
	NumFound int             `json:"num_found"`
	Listings []rawRecord     `json:"listings"`
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	Facets   json.RawMessage `json:"facets"`
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, out *searchResponse) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	return c.retry.Do(ctx, "marketcheck "+endpoint, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		*out = searchResponse{}
		if err := sources.DecodeJSON(resp, out); err != nil {
			return err
		}
		if out.Listings == nil && (out.Error != "" || out.Message != "") {
			msg := out.Error
			if msg == "" {
				msg = out.Message
			}
			return fmt.Errorf("marketcheck error body: %s", msg)
		}
		return nil
	})
}

// HomeFeed issues the four curated sub-queries concurrently and joins them.
// All four must settle before the tier counts as succeeded; any error fails
// the whole batch so the orchestrator can advance a tier.
func (c *Client) HomeFeed(ctx context.Context) (*sources.Result, error) {
	subQueries := []url.Values{
		{ // premium picks
			"rows": {"25"}, "photo_links": {"true"}, "min_photo_links": {"5"},
			"year_range": {"2024-2026"}, "price_range": {"28000-180000"},
			"make":    {"BMW,Mercedes-Benz,Audi,Porsche,Lexus,Toyota,Honda,Tesla,Ford,Chevrolet,Hyundai,Kia,Mazda,Subaru,Volkswagen"},
			"sort_by": {"last_seen"}, "sort_order": {"desc"}, "country": {"us"},
		},
		{ // value picks
			"rows": {"25"}, "photo_links": {"true"}, "min_photo_links": {"3"},
			"year_range": {"2022-2026"}, "price_range": {"15000-50000"},
			"miles_range": {"0-50000"},
			"sort_by":     {"price"}, "sort_order": {"asc"}, "country": {"us"},
		},
		{ // fresh arrivals
			"rows": {"25"}, "photo_links": {"true"}, "min_photo_links": {"3"},
			"year_range": {"2024-2026"}, "price_range": {"20000-120000"},
			"first_seen_days": {"0-7"},
			"sort_by":         {"first_seen"}, "sort_order": {"desc"}, "country": {"us"},
		},
		{ // SUV spotlight
			"rows": {"15"}, "photo_links": {"true"}, "min_photo_links": {"4"},
			"year_range": {"2024-2026"}, "body_type": {"SUV"},
			"price_range": {"25000-90000"},
			"sort_by":     {"last_seen"}, "sort_order": {"desc"}, "country": {"us"},
		},
	}

	responses := make([]searchResponse, len(subQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i := range subQueries {
		i := i
		g.Go(func() error {
			return c.fetch(gctx, "/search/car/active", subQueries[i], &responses[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Listing
	for _, resp := range responses {
		for i := range resp.Listings {
			all = append(all, normalize(&resp.Listings[i]))
		}
	}
	return &sources.Result{Listings: all, NumFound: responses[0].NumFound}, nil
}

// Search runs one active-inventory query with the caller's filters.
func (c *Client) Search(ctx context.Context, q sources.Query) (*sources.Result, error) {
	params := url.Values{
		"rows":        {fmt.Sprintf("%d", q.Rows)},
		"start":       {fmt.Sprintf("%d", q.Start)},
		"photo_links": {"true"},
		"country":     {"us"},
	}
	setIf := func(key, val string) {
		if val != "" {
			params.Set(key, val)
		}
	}
	setIf("make", q.Make)
	setIf("model", q.Model)
	setIf("year_range", q.YearRange)
	setIf("year", q.Year)
	setIf("price_range", q.PriceRange)
	setIf("body_type", q.BodyType)
	setIf("car_type", q.CarType)
	setIf("fuel_type", q.FuelType)
	setIf("transmission", q.Transmission)
	setIf("miles_range", q.MilesRange)
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
		order := q.SortOrder
		if order == "" {
			order = "asc"
		}
		params.Set("sort_order", order)
	} else {
		params.Set("sort_by", "last_seen")
		params.Set("sort_order", "desc")
	}
	if q.Zip != "" {
		params.Set("zip", q.Zip)
		radius := q.Radius
		if radius == "" {
			radius = "50"
		}
		params.Set("radius", radius)
	}

	var resp searchResponse
	if err := c.fetch(ctx, "/search/car/active", params, &resp); err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(resp.Listings))
	for i := range resp.Listings {
		listings = append(listings, normalize(&resp.Listings[i]))
	}
	return &sources.Result{Listings: listings, NumFound: resp.NumFound}, nil
}

// GetListing fetches a single listing by MarketCheck id.
func (c *Client) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var resp struct {
		rawRecord
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	reqURL := c.baseURL + "/listing/car/" + url.PathEscape(id) + "?" + url.Values{"api_key": {c.apiKey}}.Encode()
	err := c.retry.Do(ctx, "marketcheck listing", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		httpResp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		return sources.DecodeJSON(httpResp, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("marketcheck listing %s: %s", id, resp.Error)
	}
	l := normalize(&resp.rawRecord)
	return &l, nil
}

// Facets runs a zero-row facet query and returns the raw facet body.
func (c *Client) Facets(ctx context.Context, fields string) (json.RawMessage, int, error) {
	if fields == "" {
		fields = "make,body_type,fuel_type,transmission"
	}
	params := url.Values{
		"rows":       {"0"},
		"facets":     {fields},
		"country":    {"us"},
		"year_range": {"2020-2026"},
	}
	var resp searchResponse
	if err := c.fetch(ctx, "/search/car/active", params, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Facets, resp.NumFound, nil
}

// Probe is the 1-row readiness check.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var resp searchResponse
	return c.fetch(ctx, "/search/car/active", url.Values{
		"rows": {"1"}, "start": {"0"}, "country": {"us"},
	}, &resp)
}
