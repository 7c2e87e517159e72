// Package ingest drives the upstream activity feed's POST endpoint,
// normalizes and persists each page, and walks backward in time until a
// caller-chosen floor is reached.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mhansen/ingresslapse/feed"
)

const feedURL = "https://www.ingress.com/intel/getplexts"

// Client issues paginated POST requests against the feed, rate-limited and
// circuit-broken the way the teacher's census.Client guards the Census
// API: a token-bucket limiter caps request rate, and a breaker trips after
// a run of consecutive failures so a maintenance window fails fast instead
// of being hammered.
type Client struct {
	HTTPClient *http.Client
	FeedKey    string

	// FeedURL overrides the endpoint; callers leave it empty to use the
	// production feed. Tests point it at an httptest.Server.
	FeedURL string

	logf func(msg string, args ...any)
}

// NewClient constructs a Client using http.DefaultClient.
func NewClient(feedKey string) *Client {
	return &Client{HTTPClient: http.DefaultClient, FeedKey: feedKey}
}

func (c *Client) url() string {
	if c.FeedURL != "" {
		return c.FeedURL
	}
	return feedURL
}

// SetLog sets the log function the client uses when issuing requests.
func (c *Client) SetLog(logf func(msg string, args ...any)) {
	c.logf = logf
}

var limiter = newRateLimiter(1, 1)
var breaker = newCircuitBreaker(5, 15*time.Minute)

// Page fetches one page of events bounded above by maxTimestampMs.
func (c *Client) Page(ctx context.Context, lat, lng float64, maxTimestampMs int64) (feed.FeedResponse, error) {
	var result feed.FeedResponse

	if err := breaker.Err(); err != nil {
		return result, err
	}

	select {
	case <-limiter.Ready():
	case <-ctx.Done():
		return result, fmt.Errorf("ingest: waiting for rate limiter: %w", ctx.Err())
	}

	reqBody, err := json.Marshal(map[string]any{
		"maxLatE6":       int64((lat + 0.01) * 1_000_000),
		"minLatE6":       int64((lat - 0.01) * 1_000_000),
		"maxLngE6":       int64((lng + 0.01) * 1_000_000),
		"minLngE6":       int64((lng - 0.01) * 1_000_000),
		"maxTimestampMs": maxTimestampMs,
		"minTimestampMs": -1,
	})
	if err != nil {
		return result, fmt.Errorf("ingest: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(reqBody))
	if err != nil {
		breaker.Track(err)
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.FeedKey != "" {
		req.Header.Set("Cookie", c.FeedKey)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	duration := time.Since(start)
	if c.logf != nil {
		defer func() {
			c.logf("ingest.Client.Page", "error", err, "duration", duration)
		}()
	}
	if err != nil {
		err = fmt.Errorf("ingest: request failed: %w", err)
		breaker.Track(err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("ingest: returned http %d", resp.StatusCode)
		breaker.Track(err)
		return result, err
	}

	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		err = fmt.Errorf("ingest: decode response: %w", err)
		breaker.Track(err)
		return result, err
	}

	breaker.Track(nil)
	return result, nil
}

func newRateLimiter(burst, perSecond int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	r := &rateLimiter{ch: make(chan struct{}, burst)}
	for range burst {
		r.ch <- struct{}{}
	}
	ticker := time.NewTicker(time.Second / time.Duration(perSecond))
	go func() {
		for range ticker.C {
			select {
			case r.ch <- struct{}{}:
			default:
			}
		}
	}()
	return r
}

type rateLimiter struct {
	ch chan struct{}
}

func (r *rateLimiter) Ready() <-chan struct{} {
	return r.ch
}

func newCircuitBreaker(threshold int, tripDuration time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, tripDuration: tripDuration}
}

// circuitBreaker trips once more than `threshold` consecutive errors have
// been tracked (the error after the threshold-th one) and fails fast
// for tripDuration before allowing requests again.
type circuitBreaker struct {
	mu           sync.Mutex
	errorCount   int
	threshold    int
	tripDuration time.Duration
	resetAfter   time.Time
}

var errShortCircuit = errors.New("ingest: circuit breaker open; too many consecutive feed errors")

func (b *circuitBreaker) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.errorCount <= b.threshold {
		return nil
	}
	if time.Now().After(b.resetAfter) {
		b.errorCount = 0
		return nil
	}
	return errShortCircuit
}

func (b *circuitBreaker) Track(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.errorCount = 0
		return
	}
	b.errorCount++
	if b.errorCount > b.threshold {
		b.resetAfter = time.Now().Add(b.tripDuration)
	}
}
