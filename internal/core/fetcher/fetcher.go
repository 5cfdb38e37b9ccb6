// Package fetcher performs single-serial warranty lookups with bounded
// retry. The fetcher is stateless: it never touches the cache or the store,
// so it is safe to invoke concurrently without coordination.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warrantylens/warrantylens/internal/core"
)

const (
	// DefaultMaxRetries bounds retries after the initial attempt.
	DefaultMaxRetries = 2
	// DefaultTimeout applies per attempt, not per serial.
	DefaultTimeout = 3 * time.Second
	// DefaultRetryDelay is the fixed pause between attempts. It is not
	// counted against the attempt timeout.
	DefaultRetryDelay = 100 * time.Millisecond

	defaultBaseURL = "https://newsupport.lenovo.com.cn/api/drive"
	successStatus  = 200
)

// Fetcher looks up warranty information for one serial at a time.
type Fetcher struct {
	Client     *http.Client
	BaseURL    string
	Headers    map[string]string
	MaxRetries int
	Timeout    time.Duration
	RetryDelay time.Duration
	Clock      func() time.Time
}

// Fetch attempts up to MaxRetries+1 lookups for the serial. A lookup
// succeeds only when the transport call completes and the decoded response
// reports the success status code; any other decoded status retries
// identically to a transport or decode error. On exhaustion the result
// carries whichever failure was observed last.
func (f *Fetcher) Fetch(ctx context.Context, serial string, sequence, total int) *core.QueryResult {
	if ctx == nil {
		ctx = context.Background()
	}

	maxRetries := f.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	prov := core.Provenance{
		CheckID:     uuid.New().String(),
		RequestedAt: f.now(),
	}

	var lastReason string
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := f.pause(ctx); err != nil {
				prov.ResolvedAt = f.now()
				return core.NewFailureResult(serial, sequence, total, err.Error(), attempt-1, prov)
			}
		}

		payload, err := f.attempt(ctx, serial)
		if err != nil {
			lastReason = err.Error()
			continue
		}
		if payload.StatusCode != successStatus {
			lastReason = statusReason(payload)
			continue
		}

		prov.ResolvedAt = f.now()
		return core.NewSuccessResult(serial, sequence, total, payload, attempt, prov)
	}

	prov.ResolvedAt = f.now()
	return core.NewFailureResult(serial, sequence, total, lastReason, maxRetries, prov)
}

// attempt performs one lookup within the per-attempt timeout. Decode errors
// are returned as transport errors so they retry the same way.
func (f *Fetcher) attempt(ctx context.Context, serial string) (*core.WarrantyPayload, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, f.lookupURL(serial), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range f.Headers {
		req.Header.Set(key, value)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("lookup service returned HTTP %d", resp.StatusCode)
	}

	var payload core.WarrantyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}

	return &payload, nil
}

// pause waits the fixed inter-retry delay, honoring cancellation.
func (f *Fetcher) pause(ctx context.Context) error {
	delay := f.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) lookupURL(serial string) string {
	base := strings.TrimSuffix(f.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return fmt.Sprintf("%s/%s/drivewarrantyinfo", base, url.PathEscape(serial))
}

func (f *Fetcher) now() time.Time {
	if f != nil && f.Clock != nil {
		return f.Clock()
	}
	return time.Now().UTC()
}

func statusReason(payload *core.WarrantyPayload) string {
	if payload.Message != "" {
		return fmt.Sprintf("lookup service status %d: %s", payload.StatusCode, payload.Message)
	}
	return fmt.Sprintf("lookup service status %d", payload.StatusCode)
}
