// Package serpapi implements the SerpAPI boundary: the typed search client,
// the page-cursor pagination driver and the related-content fetch.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonesrussell/tikspyder/internal/logger"
)

const (
	// DefaultEndpoint is the SerpAPI search endpoint.
	DefaultEndpoint = "https://serpapi.com/search"
	// DefaultPageDelay is the minimum pause between result pages. Upstream
	// rate limits assume at least this much pacing.
	DefaultPageDelay = 2 * time.Second
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 30 * time.Second

	// batchSize is the fixed num parameter sent with every search.
	batchSize = 100
	// maxErrorBody caps how much of an error response body is kept.
	maxErrorBody = 512
)

// SearchParams carries the query and locale parameters for one search.
type SearchParams struct {
	Query        string
	GoogleDomain string
	GL           string
	HL           string
	CR           string
	LR           string
	Safe         string
}

// ClientConfig configures a Client.
type ClientConfig struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
	PageDelay  time.Duration
	Logger     logger.Logger
}

// Client is a SerpAPI search client.
type Client struct {
	apiKey    string
	endpoint  string
	http      *http.Client
	pageDelay time.Duration
	log       logger.Logger

	// sleep is swapped out by pagination tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client. Zero-value config fields fall back to
// defaults; the logger falls back to a nop logger.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = DefaultPageDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	return &Client{
		apiKey:    cfg.APIKey,
		endpoint:  cfg.Endpoint,
		http:      cfg.HTTPClient,
		pageDelay: cfg.PageDelay,
		log:       cfg.Logger,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// firstPageURL builds the initial request URL. Images searches add tbm=isch.
func (c *Client) firstPageURL(params SearchParams, images bool) string {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", params.Query)
	q.Set("start", "0")
	q.Set("num", strconv.Itoa(batchSize))
	q.Set("nfpr", "1")
	q.Set("api_key", c.apiKey)

	for key, val := range map[string]string{
		"google_domain": params.GoogleDomain,
		"gl":            params.GL,
		"hl":            params.HL,
		"cr":            params.CR,
		"lr":            params.LR,
		"safe":          params.Safe,
	} {
		if val != "" {
			q.Set(key, val)
		}
	}

	if images {
		q.Set("tbm", "isch")
	}

	return c.endpoint + "?" + q.Encode()
}

// get performs one API call and decodes the response.
func (c *Client) get(ctx context.Context, rawURL string) (*SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call serpapi: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, fmt.Errorf("serpapi returned %d: %s", res.StatusCode, body)
	}

	var payload SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}

	return &payload, nil
}

// withAPIKey ensures an upstream-provided URL carries the api_key parameter.
// Pagination and see-more URLs come back without it.
func (c *Client) withAPIKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("api_key") == "" {
		q.Set("api_key", c.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Paginate drives a search through every result page, invoking handle per
// page before advancing. The inter-page delay is enforced between pages.
// Returns the number of pages fetched.
func (c *Client) Paginate(
	ctx context.Context,
	params SearchParams,
	images bool,
	handle func(*SearchResponse) error,
) (int, error) {
	next := c.firstPageURL(params, images)
	pages := 0

	for next != "" {
		if pages > 0 {
			if err := c.sleep(ctx, c.pageDelay); err != nil {
				return pages, err
			}
		}

		res, err := c.get(ctx, next)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", pages+1, err)
		}
		pages++

		if err := handle(res); err != nil {
			return pages, err
		}

		next = ""
		if res.Pagination != nil && res.Pagination.Next != "" {
			next = c.withAPIKey(res.Pagination.Next)
		}
	}

	return pages, nil
}

// LoadRelated fetches a related-content URL, following one further see-more
// pointer automatically when the response carries one.
func (c *Client) LoadRelated(ctx context.Context, rawURL string) (*SearchResponse, error) {
	res, err := c.get(ctx, c.withAPIKey(rawURL))
	if err != nil {
		return nil, err
	}

	if res.SeeMoreLink != "" {
		more, moreErr := c.get(ctx, c.withAPIKey(res.SeeMoreLink))
		if moreErr != nil {
			c.log.Warn("see-more follow failed",
				logger.String("url", res.SeeMoreLink),
				logger.Error(moreErr))
			return res, nil
		}
		return more, nil
	}

	return res, nil
}
