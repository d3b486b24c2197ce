// Package noaa fetches planetary K-index forecasts from NOAA SWPC.
package noaa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// maxPayloadBytes bounds a single forecast download. The real product is
// a few kilobytes.
const maxPayloadBytes = 4 << 20

// Client implements forecast.Source over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a forecast client for the given product URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads the raw forecast payload.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "geostormx/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("swpc API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("forecast payload exceeds %d bytes", maxPayloadBytes)
	}

	c.logger.Debug("forecast fetched", "url", c.url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

// FileSource implements forecast.Source over a saved payload on disk.
type FileSource struct {
	Path string
}

// Fetch reads the whole file.
func (f FileSource) Fetch(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read forecast file: %w", err)
	}
	return b, nil
}
