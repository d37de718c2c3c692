// Package carbon looks up grid carbon intensity from an Electricity
// Maps-compatible API.
package carbon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client reports the latest carbon intensity for a grid zone.
type Client interface {
	Latest(ctx context.Context, zone string) (*Intensity, error)
}

// Intensity is one carbon-intensity reading in gCO2eq/kWh.
type Intensity struct {
	Zone      string    `json:"zone"`
	Value     float64   `json:"carbonIntensity"`
	UpdatedAt time.Time `json:"updatedAt"`
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

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a carbon-intensity client with the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.electricitymap.org/v3",
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Latest(ctx context.Context, zone string) (*Intensity, error) {
	endpoint := fmt.Sprintf("%s/carbon-intensity/latest?zone=%s", c.baseURL, url.QueryEscape(zone))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "carbon: build request")
	}
	req.Header.Set("auth-token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "carbon: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("carbon: unexpected status %d for zone %s", resp.StatusCode, zone)
	}

	var in Intensity
	if err := json.NewDecoder(resp.Body).Decode(&in); err != nil {
		return nil, eris.Wrap(err, "carbon: decode response")
	}
	if in.Zone == "" {
		in.Zone = zone
	}
	return &in, nil
}
