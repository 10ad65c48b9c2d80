// Package marketdata provides a quote client backed by the Yahoo Finance
// chart API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Yahoo Finance API.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2
)

// Client is a market data quote client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
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

// NewClient creates a new market data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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

// GetQuote retrieves the latest price and previous close for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	params := url.Values{}
	params.Set("range", "2d")
	params.Set("interval", "1d")

	path := "/v8/finance/chart/" + url.PathEscape(symbol)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if c.logger != nil {
		c.logger.Debug().
			Str("symbol", symbol).
			Msg("Market data request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Symbol:     symbol,
		}
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    chart.Chart.Error.Description,
			Symbol:     symbol,
		}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "empty chart result",
			Symbol:     symbol,
		}
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "no market price in response",
			Symbol:     symbol,
		}
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.ChartPreviousClose,
	}, nil
}
