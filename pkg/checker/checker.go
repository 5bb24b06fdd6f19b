// Package checker verifies that remote links are reachable.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/fetcher"
)

// Checker probes a URL with HEAD and falls back to GET once. Some servers
// refuse HEAD but serve GET.
type Checker struct {
	transport fetcher.Transport
	timeout   time.Duration
	headers   map[string]string
	cache     *lru.Cache[string, models.ResolutionResult]
	logger    *slog.Logger
}

// New creates a Checker. A CacheSize of zero disables result caching.
func New(transport fetcher.Transport, cfg models.Config, logger *slog.Logger) (*Checker, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Checker{
		transport: transport,
		timeout:   cfg.Timeout,
		headers:   map[string]string{"User-Agent": cfg.UserAgent},
		logger:    logger,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, models.ResolutionResult](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Check returns a valid result with "OK (<status>)" when either attempt
// succeeds and "Broken (<error>)" when both fail. There are no further retries.
func (c *Checker) Check(ctx context.Context, url string) models.ResolutionResult {
	if c.cache != nil {
		if res, ok := c.cache.Get(url); ok {
			return res
		}
	}

	res := c.probe(ctx, url)

	// A cancelled run says nothing about the URL.
	if c.cache != nil && ctx.Err() == nil {
		c.cache.Add(url, res)
	}
	return res
}

func (c *Checker) probe(ctx context.Context, url string) models.ResolutionResult {
	code, err := c.transport.Request(ctx, url, http.MethodHead, c.headers, c.timeout)
	if err == nil {
		return models.ResolutionResult{Valid: true, Detail: fmt.Sprintf("OK (%d)", code)}
	}
	c.logger.Debug("HEAD probe failed, retrying with GET", "url", url, "error", err)

	code, err = c.transport.Request(ctx, url, http.MethodGet, c.headers, c.timeout)
	if err == nil {
		return models.ResolutionResult{Valid: true, Detail: fmt.Sprintf("OK (%d)", code)}
	}
	return models.ResolutionResult{Valid: false, Detail: fmt.Sprintf("Broken (%v)", err)}
}
