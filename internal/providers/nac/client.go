package nac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	baseURL   = "https://api.avalanche.org"
	userAgent = "BackcountryCrews/1.0 (https://backcountrycrews.com)"

	// requestTimeout bounds every upstream call so a stalled center API can
	// never block a warning cycle.
	requestTimeout = 10 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		logger:     logger.With("component", "nac-client"),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint.
// This is useful for testing with a local test server.
func NewClientWithBaseURL(base string, logger *slog.Logger) *Client {
	c := NewClient(logger)
	c.baseURL = base
	return c
}

// GetProducts fetches all products published by a center on or after startDate
// (YYYY-MM-DD). Warnings, watches, and special bulletins all arrive through
// this one endpoint.
func (c *Client) GetProducts(ctx context.Context, centerId, startDate string) ([]Product, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = "/v2/public/products"
	q := u.Query()
	q.Set("avalanche_center_id", centerId)
	q.Set("date_start", startDate)
	u.RawQuery = q.Encode()

	c.logger.Debug("fetching NAC products",
		"center_id", centerId,
		"date_start", startDate,
		"url", u.String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch NAC products",
			"center_id", centerId,
			"error", err,
		)
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("NAC products API returned error",
			"status_code", resp.StatusCode,
			"center_id", centerId,
			"response_body", string(body),
		)
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		c.logger.Error("failed to decode NAC products response",
			"center_id", centerId,
			"error", err,
		)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("successfully fetched NAC products",
		"center_id", centerId,
		"product_count", len(products),
	)

	return products, nil
}
