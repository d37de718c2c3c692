// Package azureopenai is a minimal chat-completions client for Azure OpenAI
// deployments. It issues one synchronous request per call and classifies
// failures so callers can tell a service outage from a malformed reply.
package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultTimeout = 45 * time.Second

// Client performs chat completions against an Azure OpenAI deployment.
type Client interface {
	// Complete sends a single-message prompt and returns the assistant text,
	// trimmed of surrounding whitespace. No retries are performed; a failure
	// is terminal for the call.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries the prompt and sampling parameters for one call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ClientConfig identifies the deployment and credential. All four fields are
// required; they come from configuration, never from the pipeline.
type ClientConfig struct {
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string
}

// StatusError is returned when the service answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("azureopenai: unexpected status %d: %s", e.Code, e.Body)
}

// IsServiceUnavailable reports whether err represents a failed call to the
// generative service, either HTTP-level (non-200) or transport-level
// (network error, timeout). Parse failures are not service errors.
func IsServiceUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	return errors.As(err, &se) || errors.As(err, new(transportError))
}

// transportError marks network-level failures so they classify separately
// from response-decoding failures.
type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient creates an Azure OpenAI chat-completions client.
func NewClient(cfg ClientConfig, opts ...Option) Client {
	c := &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "azureopenai: marshal request")
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "azureopenai: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(transportError{err}, "azureopenai: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(transportError{err}, "azureopenai: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "azureopenai: unmarshal response")
	}
	if len(result.Choices) == 0 {
		return "", eris.New("azureopenai: response has no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
