// Package qase is a minimal client for the Qase test-management API: create a
// run, attach results, complete the run.
package qase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Qase API.
	DefaultBaseURL = "https://api.qase.io/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is a Qase API client scoped to one project.
type Client struct {
	baseURL     string
	apiToken    string
	projectCode string
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a Qase API client.
func NewClient(apiToken, projectCode string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiToken:    apiToken,
		projectCode: projectCode,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Result is one test-case outcome attached to a run.
type Result struct {
	CaseID  int    `json:"case_id,omitempty"`
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
	TimeMs  int64  `json:"time_ms,omitempty"`
}

type apiEnvelope struct {
	Status bool            `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"errorMessage"`
}

// CreateRun creates a test run and returns its ID.
func (c *Client) CreateRun(ctx context.Context, title string) (int, error) {
	body := map[string]any{"title": title}

	var result struct {
		ID int `json:"id"`
	}
	if err := c.post(ctx, fmt.Sprintf("/run/%s", c.projectCode), body, &result); err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return result.ID, nil
}

// AddResults attaches a batch of results to a run.
func (c *Client) AddResults(ctx context.Context, runID int, results []Result) error {
	if len(results) == 0 {
		return nil
	}
	body := map[string]any{"results": results}
	if err := c.post(ctx, fmt.Sprintf("/result/%s/%d/bulk", c.projectCode, runID), body, nil); err != nil {
		return fmt.Errorf("failed to add results to run %d: %w", runID, err)
	}
	return nil
}

// CompleteRun marks a run as finished.
func (c *Client) CompleteRun(ctx context.Context, runID int) error {
	if err := c.post(ctx, fmt.Sprintf("/run/%s/%d/complete", c.projectCode, runID), nil, nil); err != nil {
		return fmt.Errorf("failed to complete run %d: %w", runID, err)
	}
	return nil
}

// post performs a POST request with the token header and decodes the
// response envelope.
func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Token", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().Str("path", path).Msg("Qase API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qase API returned %d: %s", resp.StatusCode, string(data))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !envelope.Status {
		return fmt.Errorf("qase API rejected the request: %s", envelope.Error)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result payload: %w", err)
		}
	}
	return nil
}
