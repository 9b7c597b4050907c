// Package upstream performs cached HTTP GETs against the public statistics APIs.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwulff/abyss-go/internal/cache"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds how much of a response is read.
const maxBodySize = 32 << 20

// Getter fetches response bodies, consulting a cache first.
type Getter struct {
	HTTPClient *http.Client
	Cache      cache.Cache
	TTL        time.Duration
	Logger     *zap.Logger
}

// NewGetter creates a Getter with no cache.
func NewGetter(timeout time.Duration) *Getter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Getter{
		HTTPClient: &http.Client{Timeout: timeout},
		Cache:      cache.Nop{},
		Logger:     zap.NewNop(),
	}
}

// Fetch GETs url and passes the body to decode. source labels metrics and logs. A body is cached only after
// decode accepts it, so API errors reported with status 200 are never
// served from the cache. A cached body that decode rejects is refetched.
func (g *Getter) Fetch(ctx context.Context, source, url string, decode func([]byte) error) error {
	logger := g.logger().With(zap.String("source", source), zap.String("url", url))

	if g.Cache != nil {
		body, ok, err := g.Cache.Get(ctx, url)
		switch {
		case err != nil:
			logger.Warn("cache read failed", zap.Error(err))
		case ok:
			decodeErr := decode(body)
			if decodeErr == nil {
				logger.Debug("cache hit")
				return nil
			}
			logger.Warn("cached body rejected, refetching", zap.Error(decodeErr))
		}
	}

	start := time.Now()
	body, err := g.fetch(ctx, url)
	if err == nil {
		err = decode(body)
	}
	metrics.ObserveFetch(source, time.Since(start), err)
	if err != nil {
		return err
	}
	logger.Debug("fetched", zap.Int("bytes", len(body)), zap.Duration("elapsed", time.Since(start)))

	if g.Cache != nil {
		if err := g.Cache.Set(ctx, url, body, g.TTL); err != nil {
			logger.Warn("cache write failed", zap.Error(err))
		}
	}
	return nil
}

func (g *Getter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (g *Getter) logger() *zap.Logger {
	return logging.OrNop(g.Logger)
}
