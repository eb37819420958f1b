package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"hny-greeting-service/internal/models"
)

var ErrNotConfigured = errors.New("feed: endpoint not configured")

const maxBodyBytes = 1 << 20

func debugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("GO_LOG")))
	return v == "debug" || v == "1" || v == "true"
}

func debugLogf(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	log.Printf(format, args...)
}

// Client talks to the remote content endpoint: it reads the daily overlay
// and forwards visitor messages. Overlay reads are cached for cacheTTL.
type Client struct {
	URL     string
	HTTP    *http.Client
	Timeout time.Duration

	mu        sync.RWMutex
	cached    models.OverlayFeed
	cachedAt  time.Time
	cacheTTL  time.Duration
	lastError error
}

func NewClient(url string, httpClient *http.Client, timeout, ttl time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{URL: strings.TrimSpace(url), HTTP: httpClient, Timeout: timeout, cacheTTL: ttl}
}

// Configured reports whether the endpoint is set to something other than a
// placeholder.
func (c *Client) Configured() bool {
	u := strings.TrimSpace(c.URL)
	return u != "" && !strings.Contains(u, "REPLACE")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Fetch performs one bounded GET of the overlay feed.
func (c *Client) Fetch(ctx context.Context) (models.OverlayFeed, error) {
	if !c.Configured() {
		return models.OverlayFeed{}, ErrNotConfigured
	}

	c.mu.RLock()
	if c.fresh() {
		f, err := c.cached, c.lastError
		c.mu.RUnlock()
		return f, err
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return c.cached, c.lastError
	}

	f, err := c.fetch(ctx)
	c.cachedAt = time.Now()
	c.cached = f
	c.lastError = err
	return f, err
}

func (c *Client) fresh() bool {
	return c.cacheTTL > 0 && !c.cachedAt.IsZero() && time.Since(c.cachedAt) < c.cacheTTL
}

func (c *Client) fetch(ctx context.Context) (models.OverlayFeed, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return models.OverlayFeed{}, err
	}
	req.Header.Set("Accept", "application/json")

	debugLogf("feed GET %s", c.URL)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		debugLogf("feed GET %s -> err=%v", c.URL, err)
		return models.OverlayFeed{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.OverlayFeed{}, err
	}
	debugLogf("feed GET %s -> status=%d bytes=%d", c.URL, resp.StatusCode, len(b))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.OverlayFeed{}, fmt.Errorf("feed: status %d", resp.StatusCode)
	}
	return ParseOverlay(b)
}

// Submit posts a visitor message to the endpoint. The response body is
// ignored.
func (c *Client) Submit(ctx context.Context, s models.Submission) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	debugLogf("feed POST %s type=%s", c.URL, s.Type)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("feed: submit status %d", resp.StatusCode)
	}
	return nil
}
