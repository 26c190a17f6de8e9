// Package autodev is secondary provider B: the api.auto.dev listings API,
// authenticated with a bearer key.
package autodev

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"nightdrive/models"
	"nightdrive/sources"
	"nightdrive/utils"
)

const (
	defaultBaseURL = "https://api.auto.dev"
	sourceName     = "autodev"
)

// Client calls the Auto.dev listings API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// New creates a ready-to-use Auto.dev client.
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

// listingsResponse wraps the records the pipeline reads. An error field in
// the body is a failure even under HTTP 200.
type listingsResponse struct {
	Data       []record `json:"data"`
	TotalCount int      `json:"totalCount"`
	Error      string   `json:"error"`
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*listingsResponse, error) {
	reqURL := c.baseURL + "/listings?" + params.Encode()
	var resp listingsResponse
	err := c.retry.Do(ctx, "autodev listings", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		httpResp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		resp = listingsResponse{}
		if err := sources.DecodeJSON(httpResp, &resp); err != nil {
			return err
		}
		if resp.Error != "" {
			return fmt.Errorf("autodev error body: %s", resp.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) result(resp *listingsResponse) *sources.Result {
	listings := make([]models.Listing, 0, len(resp.Data))
	for i := range resp.Data {
		listings = append(listings, normalizeRecord(&resp.Data[i]))
	}
	total := resp.TotalCount
	if total == 0 {
		total = len(listings)
	}
	return &sources.Result{Listings: listings, NumFound: total}
}

// HomeFeed pulls one broad page; shaping is the pipeline's job.
func (c *Client) HomeFeed(ctx context.Context) (*sources.Result, error) {
	resp, err := c.fetch(ctx, url.Values{"limit": {"50"}, "page": {"1"}})
	if err != nil {
		return nil, err
	}
	return c.result(resp), nil
}

// Search maps row/offset pagination onto limit/page and passes the filters
// Auto.dev understands.
func (c *Client) Search(ctx context.Context, q sources.Query) (*sources.Result, error) {
	rows := q.Rows
	if rows < 1 {
		rows = 1
	}
	page := q.Start/rows + 1
	params := url.Values{
		"limit": {fmt.Sprintf("%d", rows)},
		"page":  {fmt.Sprintf("%d", page)},
	}
	if m := strings.TrimSpace(q.Make); m != "" {
		params.Set("make", m)
	}
	if m := strings.TrimSpace(q.Model); m != "" {
		params.Set("model", m)
	}
	resp, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	return c.result(resp), nil
}
