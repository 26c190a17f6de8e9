// Package ebay is secondary provider A: the eBay Browse API for the motors
// category, authenticated with a cached client-credentials OAuth token.
package ebay

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nightdrive/models"
	"nightdrive/sources"
	"nightdrive/utils"
)

const (
	sourceName      = "ebay"
	motorsCategory  = "6001"
	oauthScope      = "https://api.ebay.com/oauth/api_scope"
	tokenGraceSecs  = 60
	maxTokenTTLSecs = 7200
)

// Client calls the eBay Browse API. The OAuth token is cached until shortly
// before expiry and refreshed under a mutex.
type Client struct {
	env          string
	clientID     string
	clientSecret string
	http         *http.Client
	logger       *utils.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time

	baseURL string
}

// New creates an eBay client for the given environment ("production" or
// "sandbox").
func New(env, clientID, clientSecret string, httpClient *http.Client, logger *utils.Logger) *Client {
	c := &Client{
		env:          env,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpClient,
		logger:       logger,
	}
	c.baseURL = "https://" + c.host()
	return c
}

// SetBaseURL overrides the API host, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Configured reports whether both OAuth credentials are present.
func (c *Client) Configured() bool { return c.clientID != "" && c.clientSecret != "" }

func (c *Client) Name() string { return sourceName }

func (c *Client) host() string {
	if c.env == "production" {
		return "api.ebay.com"
	}
	return "api.sandbox.ebay.com"
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}
	if !c.Configured() {
		return "", fmt.Errorf("ebay: credentials not configured")
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {oauthScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ebay token: %w", err)
	}
	var body struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int    `json:"expires_in"`
		ErrorDescription string `json:"error_description"`
	}
	if err := sources.DecodeJSON(resp, &body); err != nil {
		return "", fmt.Errorf("ebay token: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("ebay token failed: %s", body.ErrorDescription)
	}

	ttl := body.ExpiresIn
	if ttl <= 0 || ttl > maxTokenTTLSecs {
		ttl = maxTokenTTLSecs
	}
	c.token = body.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(ttl-tokenGraceSecs) * time.Second)
	return c.token, nil
}

func (c *Client) browse(ctx context.Context, path string, out any) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	return sources.DecodeJSON(resp, out)
}

type browseResponse struct {
	ItemSummaries []itemSummary `json:"itemSummaries"`
	Total         int           `json:"total"`
}

func (c *Client) search(ctx context.Context, q string, limit, offset int) (*browseResponse, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	if q == "" {
		q = "car"
	}
	path := "/buy/browse/v1/item_summary/search?" + url.Values{
		"q":            {q},
		"category_ids": {motorsCategory},
		"limit":        {fmt.Sprintf("%d", limit)},
		"offset":       {fmt.Sprintf("%d", offset)},
	}.Encode()

	var resp browseResponse
	if err := c.browse(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HomeFeed pulls one broad motors-category page; eBay has no curated
// sub-queries, so the pipeline does the shaping.
func (c *Client) HomeFeed(ctx context.Context) (*sources.Result, error) {
	resp, err := c.search(ctx, "car", 50, 0)
	if err != nil {
		return nil, err
	}
	return resultFrom(resp), nil
}

// Search maps the inventory query onto a Browse keyword search. Only the
// make filter translates; the rest of the filters have no Browse equivalent.
func (c *Client) Search(ctx context.Context, q sources.Query) (*sources.Result, error) {
	keyword := strings.TrimSpace(q.Make)
	resp, err := c.search(ctx, keyword, q.Rows, q.Start)
	if err != nil {
		return nil, err
	}
	return resultFrom(resp), nil
}

// GetItem fetches one Browse item by its eBay item id (without the "ebay-"
// prefix) and normalizes it.
func (c *Client) GetItem(ctx context.Context, itemID string) (*models.Listing, error) {
	var item itemSummary
	if err := c.browse(ctx, "/buy/browse/v1/item/"+url.PathEscape(itemID), &item); err != nil {
		return nil, err
	}
	l := normalizeItem(&item)
	return &l, nil
}

func resultFrom(resp *browseResponse) *sources.Result {
	listings := make([]models.Listing, 0, len(resp.ItemSummaries))
	for i := range resp.ItemSummaries {
		listings = append(listings, normalizeItem(&resp.ItemSummaries[i]))
	}
	return &sources.Result{Listings: listings, NumFound: resp.Total}
}
