package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests  atomic.Int64
	SearchErrors    atomic.Int64
	VideoRequests   atomic.Int64
	VideoErrors     atomic.Int64
	StaleResponses  atomic.Int64
	SessionsCreated atomic.Int64
	SessionsExpired atomic.Int64
	WSClients       atomic.Int64
	HTTPRequests    atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":  metrics.SearchRequests.Load(),
		"search_errors":    metrics.SearchErrors.Load(),
		"video_requests":   metrics.VideoRequests.Load(),
		"video_errors":     metrics.VideoErrors.Load(),
		"stale_responses":  metrics.StaleResponses.Load(),
		"sessions_created": metrics.SessionsCreated.Load(),
		"sessions_expired": metrics.SessionsExpired.Load(),
		"ws_clients":       metrics.WSClients.Load(),
		"http_requests":    metrics.HTTPRequests.Load(),
		"cache_hits":       hits,
		"cache_misses":     misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "search_errors",
		"video_requests", "video_errors",
		"stale_responses",
		"sessions_created", "sessions_expired",
		"ws_clients", "http_requests",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for pexels/ sub-package.
func IncrSearchRequests() { metrics.SearchRequests.Add(1) }
func IncrSearchErrors()   { metrics.SearchErrors.Add(1) }
func IncrVideoRequests()  { metrics.VideoRequests.Add(1) }
func IncrVideoErrors()    { metrics.VideoErrors.Add(1) }

// Incrementors for browse/, session/ and web/.
func IncrStaleResponses()  { metrics.StaleResponses.Add(1) }
func IncrSessionsCreated() { metrics.SessionsCreated.Add(1) }
func IncrSessionsExpired() { metrics.SessionsExpired.Add(1) }
func IncrHTTPRequests()    { metrics.HTTPRequests.Add(1) }

// AddWSClients adjusts the live websocket gauge by delta.
func AddWSClients(delta int64) { metrics.WSClients.Add(delta) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
