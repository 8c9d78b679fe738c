package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/logfields"
	"github.com/openclaw/predmarkets/internal/retry"
)

// Default API endpoints.
const (
	defaultPolymarketURL = "https://gamma-api.polymarket.com/markets"
	defaultManifoldBets  = "https://api.manifold.markets/v0/bets"
	defaultManifoldMkts  = "https://api.manifold.markets/v0/markets"
	defaultKalshiURL     = "https://www.kalshidata.com/api/analytics/historical-snapshots"
)

// Client fetches platform data over plain HTTP GETs with retry.
type Client struct {
	httpClient *http.Client
	userAgent  string
	policy     retry.Policy
	location   *time.Location

	polymarketURL   string
	manifoldBetsURL string
	manifoldMktsURL string
	kalshiURL       string
}

// NewClient builds a Client from market configuration. The configured timezone
// must resolve; an unknown zone is a config error.
func NewClient(cfg config.MarketConfig) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid market timezone %q: %w", cfg.Timezone, err)
	}
	timeout, _ := time.ParseDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	initial, _ := time.ParseDuration(cfg.RetryInitialDelay)
	maxDelay, _ := time.ParseDuration(cfg.RetryMaxDelay)
	policy := retry.NewPolicy(retry.BackoffMode(cfg.RetryBackoff), initial, maxDelay, cfg.MaxRetries)

	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		userAgent:       cfg.UserAgent,
		policy:          policy,
		location:        loc,
		polymarketURL:   defaultPolymarketURL,
		manifoldBetsURL: defaultManifoldBets,
		manifoldMktsURL: defaultManifoldMkts,
		kalshiURL:       defaultKalshiURL,
	}, nil
}

// WithBaseURLs overrides the platform endpoints (tests point these at local
// servers). Empty strings keep the current value.
func (c *Client) WithBaseURLs(polymarket, manifoldBets, manifoldMarkets, kalshi string) *Client {
	if polymarket != "" {
		c.polymarketURL = polymarket
	}
	if manifoldBets != "" {
		c.manifoldBetsURL = manifoldBets
	}
	if manifoldMarkets != "" {
		c.manifoldMktsURL = manifoldMarkets
	}
	if kalshi != "" {
		c.kalshiURL = kalshi
	}
	return c
}

// Location returns the configured reporting timezone.
func (c *Client) Location() *time.Location { return c.location }

// getJSON fetches a URL and decodes the JSON body into out, retrying per the
// configured policy. All attempts exhausted returns the last error.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying market fetch", logfields.URL(url), slog.Int("attempt", attempt))
			select {
			case <-time.After(c.policy.Delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = c.getJSONOnce(ctx, url, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("fetch failed after retries: %w", lastErr)
}

func (c *Client) getJSONOnce(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
