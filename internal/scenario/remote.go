// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jontk/procsim/pkg/logging"
	"github.com/jontk/procsim/pkg/pool"
	"github.com/jontk/procsim/pkg/retry"
)

// Fetcher retrieves scenario documents over HTTP, reusing pooled
// connections per host and retrying transient failures.
type Fetcher struct {
	clients *pool.HTTPClientPool
	policy  retry.Policy
	logger  logging.Logger
}

// NewFetcher builds a Fetcher with a connection pool sized for a
// handful of remote scenario hosts and exponential-backoff retries on
// network errors and 5xx/429 responses.
func NewFetcher(logger logging.Logger) *Fetcher {
	return &Fetcher{
		clients: pool.NewHTTPClientPool(pool.DefaultPoolConfig(), logger),
		policy:  retry.NewHTTPExponentialBackoff(),
		logger:  logger,
	}
}

// Pool exposes the Fetcher's underlying client pool so a long-lived
// process (pkg/server) can run a pool.ConnectionManager alongside it
// instead of letting idle per-host clients accumulate forever.
func (f *Fetcher) Pool() *pool.HTTPClientPool {
	return f.clients
}

// FetchRemote retrieves the scenario document at url, retrying
// according to the Fetcher's policy, and decodes it using format
// inferred from the URL's extension (.yaml/.yml -> YAML, else JSON).
func (f *Fetcher) FetchRemote(ctx context.Context, url string) (*Document, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(body, formatFromURL(url))
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.clients.GetClient(url)
	opLogger := logging.LogOperation(f.logger, "fetch scenario document", "url", url)

	var lastErr error
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("scenario: building request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if resp != nil {
			resp.Body.Close()
		}
		lastErr = err
		if err == nil {
			lastErr = fmt.Errorf("scenario: unexpected status %d fetching %s", resp.StatusCode, url)
		}

		if !f.policy.ShouldRetry(ctx, resp, err, attempt) {
			logging.LogError(opLogger, lastErr, "fetch scenario document", "attempt", attempt)
			return nil, lastErr
		}

		wait := f.policy.WaitTime(attempt)
		opLogger.Warn("retrying scenario fetch", "attempt", attempt, "wait", wait.String(), "error", lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-waitCh(wait):
		}
	}
}

func waitCh(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func formatFromURL(url string) Format {
	if strings.HasSuffix(url, ".yaml") || strings.HasSuffix(url, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}
