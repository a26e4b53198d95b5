package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shufflepod/internal/media"
)

const (
	// downloadTimeout bounds a single episode download end to end.
	downloadTimeout = 10 * time.Minute

	userAgent = "shufflepod"
)

// Client downloads episode media over HTTP. Episode URLs point at CDN
// hosts and need no authentication.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a download client with a generous per-request
// timeout suitable for full-length episodes.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves the raw media bytes for one episode. Any failure is
// reported as-is; the caller records it per episode and does not retry
// within a run.
func (c *Client) Fetch(ctx context.Context, ep media.Episode) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", ep.UUID, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ep.UUID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", ep.UUID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body for %s: %w", ep.UUID, err)
	}

	return body, nil
}
