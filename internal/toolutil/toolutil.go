// Package toolutil provides shared helpers for the go_clips MCP tools.
package toolutil

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
)

// MaxPerPage is the largest page the Pexels API will return.
const MaxPerPage = 80

// NormPage normalises a page number: anything below 1 → 1.
func NormPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormPerPage normalises a page size: empty → the medium grid size, capped at MaxPerPage.
func NormPerPage(perPage int) int {
	if perPage <= 0 {
		return catalog.MediumPerPage
	}
	return min(perPage, MaxPerPage)
}

// NormNetwork parses a network hint, defaulting to fast: tool callers are
// not bandwidth constrained the way a phone on 3g is.
func NormNetwork(network string) catalog.NetworkSpeed {
	if strings.TrimSpace(network) == "" {
		return catalog.SpeedFast
	}
	return catalog.ParseNetworkSpeed(network)
}

// Cached returns the cached value for key, or calls fn and caches its result.
// Errors are returned as is and never cached.
func Cached[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	if out, ok := engine.CacheLoadJSON[T](ctx, key); ok {
		return out, nil
	}
	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	engine.CacheStoreJSON(ctx, key, out)
	return out, nil
}
