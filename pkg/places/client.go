// Package places provides business discovery via the Google Places Text
// Search API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client searches for businesses matching a free-text query.
type Client interface {
	// TextSearch runs a text search and follows pagination up to the
	// configured page limit.
	TextSearch(ctx context.Context, query string) ([]Place, error)
}

// Place is one search result.
type Place struct {
	Name             string   `json:"name"`
	Address          string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *client) {
		c.baseURL = base
	}
}

// WithLanguage sets the language results are localized to.
func WithLanguage(lang string) Option {
	return func(c *client) {
		c.language = lang
	}
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithPageDelay sets how long to wait before following a next_page_token.
// The API needs a short pause before a token becomes valid.
func WithPageDelay(d time.Duration) Option {
	return func(c *client) {
		c.pageDelay = d
	}
}

// WithMaxPages caps how many result pages one search follows.
func WithMaxPages(n int) Option {
	return func(c *client) {
		c.maxPages = n
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	limiter    *rate.Limiter
	pageDelay  time.Duration
	maxPages   int
}

// NewClient creates a Places client with the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://maps.googleapis.com/maps/api/place",
		apiKey:     apiKey,
		language:   "it",
		limiter:    rate.NewLimiter(5, 1),
		pageDelay:  2 * time.Second,
		maxPages:   3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results       []Place `json:"results"`
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	NextPageToken string  `json:"next_page_token"`
}

func (c *client) TextSearch(ctx context.Context, query string) ([]Place, error) {
	var all []Place
	pageToken := ""

	for page := 0; page < c.maxPages; page++ {
		if pageToken != "" {
			// Tokens are not immediately valid.
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "places: wait for next page")
			}
		}

		resp, err := c.search(ctx, query, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return all, nil
}

func (c *client) search(ctx context.Context, query, pageToken string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit wait")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("language", c.language)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("query", query)
	}

	endpoint := fmt.Sprintf("%s/textsearch/json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, eris.Wrap(err, "places: decode response")
	}

	switch sr.Status {
	case "OK", "ZERO_RESULTS":
		return &sr, nil
	default:
		return nil, eris.Errorf("places: search failed: %s %s", sr.Status, sr.ErrorMessage)
	}
}
