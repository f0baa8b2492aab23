package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fetches listing and detail pages. When a ScraperAPI key is
// configured, requests are routed through the render proxy, which gets past
// the basic bot walls some of the sources run.
type Client struct {
	http      *http.Client
	proxyKey  string
	userAgent string
}

const proxyBaseURL = "https://api.scraperapi.com/"

// New creates a page fetcher. proxyKey may be empty for direct fetches.
func New(proxyKey, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		proxyKey:  proxyKey,
		userAgent: userAgent,
	}
}

// Fetch downloads a page and returns its raw body.
func (c *Client) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil scrape client")
	}
	if _, err := url.ParseRequestURI(pageURL); err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	target := pageURL
	if c.proxyKey != "" {
		q := url.Values{"api_key": {c.proxyKey}, "url": {pageURL}}
		target = proxyBaseURL + "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
