package soumu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// userAgent identifies our crawler to soumu.go.jp.
const userAgent = "Mozilla/5.0 (compatible; PolibaseBot/1.0)"

// pageCacheTTL bounds how long a downloaded sheet is reused. Published
// result sheets are effectively immutable, but a TTL keeps a bad
// download from sticking forever.
const pageCacheTTL = 7 * 24 * time.Hour

// Fetcher downloads sheet exports with an optional redis-backed page
// cache keyed by URL. A nil redis client disables caching.
type Fetcher struct {
	client *http.Client
	cache  *redis.Client
	logger *slog.Logger
}

func NewFetcher(client *http.Client, cache *redis.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Fetcher{client: client, cache: cache, logger: logger}
}

func cacheKey(url string) string {
	return "soumu:page:" + url
}

// Get downloads url, serving repeat requests from the cache. Cache
// failures degrade to a plain download.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		cached, err := f.cache.Get(ctx, cacheKey(url)).Bytes()
		if err == nil {
			f.logger.Debug("page cache hit", slog.String("url", url))
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			f.logger.Warn("page cache read failed",
				slog.String("url", url), slog.String("error", err.Error()))
		}
	}

	body, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, cacheKey(url), body, pageCacheTTL).Err(); err != nil {
			f.logger.Warn("page cache write failed",
				slog.String("url", url), slog.String("error", err.Error()))
		}
	}
	return body, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	f.logger.Debug("downloading", slog.String("url", url))
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
